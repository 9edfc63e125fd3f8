package main

import "fmt"

// VarOrder is a binary max-heap of unassigned variables keyed by activity,
// used to pick the next decision variable.
type VarOrder struct {
	data     []Var
	indices  []int // heap index per variable, -1 if absent
	activity []float64
}

func NewVarOrder() *VarOrder {
	return &VarOrder{}
}

func (h *VarOrder) less(x, y Var) bool {
	return h.activity[x] > h.activity[y]
}

func (h *VarOrder) Empty() bool {
	return len(h.data) == 0
}

func (h *VarOrder) InHeap(x Var) bool {
	return int(x) < len(h.indices) && h.indices[x] >= 0
}

func (h *VarOrder) Activity(x Var) float64 {
	return h.activity[x]
}

// Decrease restores heap order after the activity of x increased.
func (h *VarOrder) Decrease(x Var) {
	if !h.InHeap(x) {
		panic(fmt.Errorf("variable %d is not in the heap", x))
	}
	h.up(h.indices[x])
}

func (h *VarOrder) RemoveMin() Var {
	x := h.data[0]
	last := len(h.data) - 1
	h.data[0] = h.data[last]
	h.indices[h.data[0]] = 0
	h.indices[x] = -1
	h.data = h.data[:last]
	if len(h.data) > 1 {
		h.down(0)
	}
	return x
}

func (h *VarOrder) PushBack(x Var) {
	if h.InHeap(x) {
		panic(fmt.Errorf("variable %d is already in the heap", x))
	}
	for int(x) >= len(h.indices) {
		h.indices = append(h.indices, -1)
		h.activity = append(h.activity, 0.0)
	}
	h.data = append(h.data, x)
	h.indices[x] = len(h.data) - 1
	if len(h.data) > 1 {
		h.up(len(h.data) - 1)
	}
}

func (h *VarOrder) up(i int) {
	x := h.data[i]
	for i != 0 {
		p := (i - 1) >> 1
		if !h.less(x, h.data[p]) {
			break
		}
		h.data[i] = h.data[p]
		h.indices[h.data[i]] = i
		i = p
	}
	h.data[i] = x
	h.indices[x] = i
}

func (h *VarOrder) down(i int) {
	x := h.data[i]
	for {
		left := 2*i + 1
		if left >= len(h.data) {
			break
		}
		child := left
		if right := left + 1; right < len(h.data) && h.less(h.data[right], h.data[left]) {
			child = right
		}
		if !h.less(h.data[child], x) {
			break
		}
		h.data[i] = h.data[child]
		h.indices[h.data[i]] = i
		i = child
	}
	h.data[i] = x
	h.indices[x] = i
}
