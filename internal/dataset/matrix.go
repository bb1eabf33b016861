package dataset

import "gonum.org/v1/gonum/mat"

// Matrix copies the selected rows into a dense float matrix. A nil idx
// selects every row.
func Matrix(rows [][]int, idx []int) *mat.Dense {
	idx = indices(len(rows), idx)
	if len(idx) == 0 {
		return nil
	}
	cols := len(rows[idx[0]])
	m := mat.NewDense(len(idx), cols, nil)
	for i, r := range idx {
		dst := m.RawRowView(i)
		for j, v := range rows[r] {
			dst[j] = float64(v)
		}
	}
	return m
}

// Column returns the selected labels as an n×1 matrix.
func Column(labels []int, idx []int) *mat.Dense {
	idx = indices(len(labels), idx)
	if len(idx) == 0 {
		return nil
	}
	m := mat.NewDense(len(idx), 1, nil)
	for i, r := range idx {
		m.Set(i, 0, float64(labels[r]))
	}
	return m
}

// OneHot returns the selected class indices as one-hot rows.
func OneHot(labels []int, idx []int, classes int) *mat.Dense {
	idx = indices(len(labels), idx)
	if len(idx) == 0 || classes <= 0 {
		return nil
	}
	m := mat.NewDense(len(idx), classes, nil)
	for i, r := range idx {
		m.Set(i, labels[r], 1)
	}
	return m
}

// Select returns the selected elements of s.
func Select[T any](s []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, r := range idx {
		out[i] = s[r]
	}
	return out
}

func indices(n int, idx []int) []int {
	if idx != nil {
		return idx
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all
}
