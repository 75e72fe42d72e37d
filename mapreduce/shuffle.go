package mapreduce

// merge consumes buffers, each sorted ascending by key, and groups pairs with
// equal keys. It repeatedly takes the largest key found at the buffer tails
// and drains that key from the tail of every buffer, so groups come out in
// descending key order. progress is called with the size of each group.
//
// All buffers are empty when merge returns.
func merge[K, V any](buffers [][]KeyVal[K, V], less LessFunc[K], progress func(n int)) [][]KeyVal[K, V] {
	var groups [][]KeyVal[K, V]

	for {
		key, ok := maxTail(buffers, less)
		if !ok {
			return groups
		}

		var group []KeyVal[K, V]
		for i, buf := range buffers {
			for len(buf) > 0 && equalKeys(less, buf[len(buf)-1].Key, key) {
				group = append(group, buf[len(buf)-1])
				buf = buf[:len(buf)-1]
			}
			buffers[i] = buf
		}

		progress(len(group))
		groups = append(groups, group)
	}
}

func maxTail[K, V any](buffers [][]KeyVal[K, V], less LessFunc[K]) (key K, ok bool) {
	for _, buf := range buffers {
		if len(buf) == 0 {
			continue
		}

		tail := buf[len(buf)-1].Key
		if !ok || less(key, tail) {
			key, ok = tail, true
		}
	}

	return key, ok
}
