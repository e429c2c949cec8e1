package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"link issues", Command{Kind: CommandLinkIssues}},
		{"please link issues", Command{Kind: CommandLinkIssues}},
		{"backlink github issues to minutes", Command{Kind: CommandLinkIssues}},
		{"Link Issues with transcript", Command{Kind: CommandLinkIssues, Transcript: true}},
		{"please link github issues to minutes with transcript for wg/did,cg/credentials",
			Command{Kind: CommandLinkIssues, Transcript: true, Groups: "wg/did,cg/credentials"}},
		{"link issues for wg/did", Command{Kind: CommandLinkIssues, Groups: "wg/did"}},
		{"help", Command{Kind: CommandHelp}},
		{"please help", Command{Kind: CommandHelp}},
		{"bye", Command{Kind: CommandBye}},
		{"out", Command{Kind: CommandBye}},
		{"please excuse us", Command{Kind: CommandBye}},
		{"leave", Command{Kind: CommandBye}},
		{"please part", Command{Kind: CommandBye}},
		{"debug", Command{Kind: CommandDebug}},
		{"debug date 2024-03-05", Command{Kind: CommandDebug, Date: "2024-03-05"}},
		{"debug groups wg/did", Command{Kind: CommandDebug, Groups: "wg/did"}},
		{"debug date 2024-03-05 groups wg/did", Command{Kind: CommandDebug, Date: "2024-03-05", Groups: "wg/did"}},
		{"link issues please", Command{Kind: CommandUnrecognized}},
		{"please bye", Command{Kind: CommandUnrecognized}},
		{"help me", Command{Kind: CommandUnrecognized}},
		{"", Command{Kind: CommandUnrecognized}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.input))
		})
	}
}
