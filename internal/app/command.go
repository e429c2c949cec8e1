package app

import "regexp"

type CommandKind int

const (
	CommandUnrecognized CommandKind = iota
	CommandBye
	CommandHelp
	CommandLinkIssues
	CommandDebug
)

// Command is what a user asked the bot, once its nickname prefix is removed.
type Command struct {
	Kind       CommandKind
	Transcript bool
	Groups     string
	Date       string
}

var (
	reLinkIssues = regexp.MustCompile(`(?i)^(please )?(back)?link (github )?issues( to minutes)?(?P<transcript> with transcript)?( for (?P<groups>[^ ]+))?$`)
	reHelp       = regexp.MustCompile(`(?i)^(please )?help$`)
	reBye        = regexp.MustCompile(`(?i)^(bye|out|(please )?(excuse us|leave|part))$`)
	reDebug      = regexp.MustCompile(`(?i)^debug( date (?P<date>[^ ]+))?( groups (?P<groups>[^ ]+))?$`)
)

func ParseCommand(s string) Command {
	if m := reLinkIssues.FindStringSubmatch(s); m != nil {
		return Command{
			Kind:       CommandLinkIssues,
			Transcript: m[reLinkIssues.SubexpIndex("transcript")] != "",
			Groups:     m[reLinkIssues.SubexpIndex("groups")],
		}
	}
	if reHelp.MatchString(s) {
		return Command{Kind: CommandHelp}
	}
	if reBye.MatchString(s) {
		return Command{Kind: CommandBye}
	}
	if m := reDebug.FindStringSubmatch(s); m != nil {
		return Command{
			Kind:   CommandDebug,
			Date:   m[reDebug.SubexpIndex("date")],
			Groups: m[reDebug.SubexpIndex("groups")],
		}
	}
	return Command{Kind: CommandUnrecognized}
}
