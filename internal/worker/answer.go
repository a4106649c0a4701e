package worker

import (
	"strings"

	"sherpa/internal/knowledge"
)

// fallbackAnswer is the canned apology sent when the knowledge backend cannot
// produce an answer. The user always gets some reply.
const fallbackAnswer = "申し訳ありません。回答の生成中にエラーが発生しました。"

const sourcesHeader = "\n\n📚 *参照元:*\n"

// FormatAnswer renders the reply text: the answer itself, plus a citation
// block when at least one source filename was extracted.
func FormatAnswer(answer knowledge.Answer) string {
	if len(answer.Sources) == 0 {
		return answer.Text
	}

	var b strings.Builder
	b.WriteString(answer.Text)
	b.WriteString(sourcesHeader)
	for i, source := range answer.Sources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(source)
	}
	return b.String()
}
