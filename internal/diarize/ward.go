package diarize

// wardCluster runs agglomerative clustering with Ward linkage over the
// vectors and returns a cluster label per vector. Labels are renumbered
// 0..k-1 by order of first appearance.
func wardCluster(vectors [][FeatureDim]float64, k int) []int {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	// Pairwise squared Euclidean distances; Ward merges on the
	// Lance-Williams update of these.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			d := sqDist(vectors[i], vectors[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	active := make([]bool, n)
	size := make([]int, n)
	member := make([][]int, n)
	for i := 0; i < n; i++ {
		active[i] = true
		size[i] = 1
		member[i] = []int{i}
	}

	for remaining := n; remaining > k; remaining-- {
		bi, bj := -1, -1
		best := 0.0
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if bi < 0 || dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}

		// Merge bj into bi and update distances to every other
		// active cluster with the Ward recurrence.
		for m := 0; m < n; m++ {
			if !active[m] || m == bi || m == bj {
				continue
			}
			ni := float64(size[bi])
			nj := float64(size[bj])
			nm := float64(size[m])
			total := ni + nj + nm
			updated := ((ni+nm)*dist[bi][m] + (nj+nm)*dist[bj][m] - nm*dist[bi][bj]) / total
			dist[bi][m] = updated
			dist[m][bi] = updated
		}
		size[bi] += size[bj]
		member[bi] = append(member[bi], member[bj]...)
		active[bj] = false
	}

	labels := make([]int, n)
	next := 0
	assigned := make(map[int]int, k)
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		for _, idx := range member[i] {
			labels[idx] = -1 - i // placeholder keyed by cluster root
		}
	}
	for i := 0; i < n; i++ {
		root := -labels[i] - 1
		cluster, ok := assigned[root]
		if !ok {
			cluster = next
			assigned[root] = cluster
			next++
		}
		labels[i] = cluster
	}
	return labels
}

func sqDist(a, b [FeatureDim]float64) float64 {
	sum := 0.0
	for i := 0; i < FeatureDim; i++ {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
