package alignment

// DefaultRadius is the default highlight window radius: the matched word
// plus two neighbors on each side.
const DefaultRadius = 2

// ActiveWords returns the sorted indices of the words to highlight at
// currentMs. The first word (in source order) whose inclusive
// [StartMs, EndMs] interval contains currentMs centers the window;
// radius words on each side are included, clipped to the bounds of
// words. Intervals from the synthesis engine may overlap; the earliest
// match wins.
//
// A nil result means no word is active at that instant (time falls in a
// gap, or before the first / after the last word). That is not an
// error. The function is pure and cheap enough to call once per
// animation frame.
func ActiveWords(words []Word, currentMs, radius int) []int {
	for i, w := range words {
		if currentMs < w.StartMs || currentMs > w.EndMs {
			continue
		}

		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius
		if hi > len(words)-1 {
			hi = len(words) - 1
		}

		indices := make([]int, 0, hi-lo+1)
		for j := lo; j <= hi; j++ {
			indices = append(indices, j)
		}
		return indices
	}

	return nil
}
