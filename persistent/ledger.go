package persistent

import "container/list"

// ledger is the insertion-ordered set of keys a snapshot must include.
type ledger[ID comparable, K any] struct {
	order *list.List
	index map[ID]*list.Element
}

type ledgerItem[ID comparable, K any] struct {
	id  ID
	key K
}

func newLedger[ID comparable, K any]() *ledger[ID, K] {
	return &ledger[ID, K]{
		order: list.New(),
		index: map[ID]*list.Element{},
	}
}

// add records key. A key already recorded keeps its position and takes the new key value.
func (l *ledger[ID, K]) add(id ID, key K) {
	if el, ok := l.index[id]; ok {
		el.Value.(*ledgerItem[ID, K]).key = key
		return
	}
	l.index[id] = l.order.PushBack(&ledgerItem[ID, K]{id: id, key: key})
}

func (l *ledger[ID, K]) remove(id ID) bool {
	el, ok := l.index[id]
	if !ok {
		return false
	}
	l.order.Remove(el)
	delete(l.index, id)
	return true
}

func (l *ledger[ID, K]) clear() {
	l.order.Init()
	clear(l.index)
}

func (l *ledger[ID, K]) len() int {
	return len(l.index)
}

func (l *ledger[ID, K]) each(f func(id ID, key K)) {
	for el := l.order.Front(); el != nil; {
		next := el.Next()
		it := el.Value.(*ledgerItem[ID, K])
		f(it.id, it.key)
		el = next
	}
}
