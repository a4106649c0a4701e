package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sherpa/internal/knowledge"
)

func TestFormatAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer knowledge.Answer
		want   string
	}{
		{
			name:   "no sources",
			answer: knowledge.Answer{Text: "デプロイ手順はこちらです。"},
			want:   "デプロイ手順はこちらです。",
		},
		{
			name: "single source",
			answer: knowledge.Answer{
				Text:    "デプロイ手順はこちらです。",
				Sources: []string{"deploy-guide.md"},
			},
			want: "デプロイ手順はこちらです。\n\n📚 *参照元:*\n• deploy-guide.md",
		},
		{
			name: "multiple sources keep order",
			answer: knowledge.Answer{
				Text:    "回答",
				Sources: []string{"b.md", "a.md"},
			},
			want: "回答\n\n📚 *参照元:*\n• b.md\n• a.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAnswer(tt.answer))
		})
	}
}
