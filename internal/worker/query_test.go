package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQuery(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "leading mention stripped",
			text: "<@U123> Hello there",
			want: "Hello there",
		},
		{
			name: "mention only falls back to original",
			text: "<@U123>",
			want: "<@U123>",
		},
		{
			name: "multiple mentions stripped",
			text: "<@U123> <@U456> where is the runbook",
			want: "where is the runbook",
		},
		{
			name: "mention in the middle stripped",
			text: "hey <@U123> where is the runbook",
			want: "hey where is the runbook",
		},
		{
			name: "no mention unchanged",
			text: "where is the runbook",
			want: "where is the runbook",
		},
		{
			name: "whitespace only falls back",
			text: "   ",
			want: "   ",
		},
		{
			name: "empty stays empty",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractQuery(tt.text))
		})
	}
}
