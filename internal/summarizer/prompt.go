package summarizer

import (
	"fmt"

	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

const chunkPrompt = `# あなたの目的:
YouTube動画の文字起こしテキストを要約します。
これは%d分割のうちの%d番目の部分です（位置: %s）。
前の部分の文脈を踏まえ、話の流れが途切れないように要約してください。

# これまでの文脈:
%s

# ルール:
1. 出力は次の形式のJSONオブジェクトのみとし、説明文やコードブロックは付けないこと。
2. "重要度" は1から5の整数で、5が最も重要。
3. 元の文章の意味を変えないこと。フィラーやタイムスタンプは無視すること。

{
  "概要": "この部分の要約（2〜3文）",
  "ポイント": [
    {"タイトル": "ポイントの見出し", "説明": "ポイントの説明", "重要度": 3}
  ],
  "文脈": {
    "前との関係": "前の部分とのつながり",
    "継続トピック": ["前から続いている話題"],
    "新規トピック": ["この部分で新しく出てきた話題"]
  }
}

# テキスト:
%s
`

const noContext = "（なし。これが最初の部分です）"

// positionLabel maps a chunk position to the word used in the prompt.
func positionLabel(c summary.TextChunk) string {
	switch {
	case c.Total <= 1:
		return "first/last"
	default:
		return c.Position()
	}
}

// buildPrompt embeds the chunk, its position and the memory digest.
func buildPrompt(c summary.TextChunk, memoryDigest string) string {
	if memoryDigest == "" {
		memoryDigest = noContext
	}
	return fmt.Sprintf(chunkPrompt, c.Total, c.Index, positionLabel(c), memoryDigest, c.Content)
}

const proofreadPrompt = `# あなたの目的:
ユーザーが入力したテキストを校閲します。

文字起こししたYouTubeの動画について、元の文章の意味を絶対に変更せずに文字起こしと校閲を行います。
これは%d分割のうちの%d番目の部分です。
文章の一貫性を保つため、前後の文脈を意識して校閲してください。

# ルール:
1.校閲した文章以外の出力は決して行ってはいけません。
2.校閲した文章のみを出力します。
3.改行の位置が不自然だった場合は文章と共に適切に改行位置も修正してください。
4.時間を意味するような表示として"(00:00)"といった記載がある場合がありますが、それは文章ではないので、文章から削除して校閲を行ってください。
5.スピーチtoテキストで文章を入力している場合、「えー」、「まあ」、「あのー」といったフィラーが含まれている場合があります。こちらも削除して校閲を行ってください。
6.テキストを出力するときには、「。」で改行を行って見やすい文章を出力してください。

テキスト:
%s
`

func buildProofreadPrompt(c summary.TextChunk) string {
	return fmt.Sprintf(proofreadPrompt, c.Total, c.Index, c.Content)
}
