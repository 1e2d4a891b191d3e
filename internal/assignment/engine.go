// Package assignment はサンタ割り当ての生成とクローズ処理を提供する。
package assignment

import "math/rand/v2"

// Pair はサンタ→受取人の1組を表す。
type Pair struct {
	SantaUserID     string
	RecipientUserID string
}

// Engine はメンバー一覧から割り当てサイクルを生成する。
// Fisher–Yatesシャッフルで一様ランダムな並びを作り、各メンバーの受取人を
// 並び順の次のメンバー（末尾は先頭に巻き戻し）とする。
// 結果は全メンバーをちょうど1周する単一サイクルとなり、
// メンバーが2人以上であれば自分自身への割り当ては発生しない。
type Engine struct {
	rng *rand.Rand
}

// NewEngine は既定の乱数源を使うEngineを生成する。
func NewEngine() *Engine {
	return &Engine{}
}

// NewEngineWithRand は指定した乱数源を使うEngineを生成する。
// 決定的なテストで使用する。
func NewEngineWithRand(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Cycle はメンバーIDの一覧から割り当てペアを生成する。
// メンバーが2人未満の場合はnilを返す（呼び出し側が事前に検証する）。
// 入力スライスは変更しない。
func (e *Engine) Cycle(memberIDs []string) []Pair {
	if len(memberIDs) < 2 {
		return nil
	}

	shuffled := make([]string, len(memberIDs))
	copy(shuffled, memberIDs)

	swap := func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if e.rng != nil {
		e.rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	pairs := make([]Pair, len(shuffled))
	for i, santa := range shuffled {
		recipient := shuffled[(i+1)%len(shuffled)]
		pairs[i] = Pair{SantaUserID: santa, RecipientUserID: recipient}
	}

	return pairs
}
