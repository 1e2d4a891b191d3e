// Package grouplock はグループ名をキーとした相互排他を提供する。
//
// グループの状態遷移（参加・役割変更・クローズ）はread-check-writeの
// 連続であり、同一グループに対しては直列化が必要になる。
// プロセス全体で単一のロックを共有すると無関係なグループ同士まで
// 直列化されるため、キーごとに独立したロックを払い出す。
package grouplock

import "sync"

// entry は1キー分のロックと参照カウントを保持する。
type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex はキーごとの排他ロックを管理する。
// 使われていないキーのエントリは自動的に解放される。
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New は新しいKeyedMutexを生成する。
func New() *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[string]*entry),
	}
}

// Lock は指定キーのロックを獲得し、解放用の関数を返す。
//
//	unlock := km.Lock(groupName)
//	defer unlock()
func (km *KeyedMutex) Lock(key string) func() {
	km.mu.Lock()
	e, ok := km.entries[key]
	if !ok {
		e = &entry{}
		km.entries[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		km.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(km.entries, key)
		}
		km.mu.Unlock()
	}
}

// Len は現在管理されているキーのエントリ数を返す。テスト用。
func (km *KeyedMutex) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.entries)
}
