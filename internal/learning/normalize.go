package learning

// NormalizeVector は学習時の範囲で1行分を [0,1] にmin-maxスケーリングします。
// 値がすべて同じ列は情報を持たないため 0 になります。
func (b FeatureBounds) NormalizeVector(v []float64) []float64 {
	out := make([]float64, len(v))
	for j, x := range v {
		if b.Degenerate(j) {
			continue
		}
		out[j] = (x - b.Min[j]) / (b.Max[j] - b.Min[j])
	}
	return out
}

// Denormalize は NormalizeVector の逆変換です。値が一定の列は Min に戻ります。
func (b FeatureBounds) Denormalize(v []float64) []float64 {
	out := make([]float64, len(v))
	for j, x := range v {
		out[j] = x*(b.Max[j]-b.Min[j]) + b.Min[j]
	}
	return out
}

// Normalize は行列全体を同じ範囲でスケーリングします。入力は変更しません。
func Normalize(matrix [][]float64, b FeatureBounds) [][]float64 {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		out[i] = b.NormalizeVector(row)
	}
	return out
}
