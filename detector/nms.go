package detector

import (
	"sort"

	"github.com/nvr-ai/go-face/common"
)

// NMS performs greedy Non-Maximum Suppression on detection regions.
//
// Regions are visited in descending score order; a region is kept only
// when its IoU with every already-kept region stays at or below the
// threshold. The sort is stable so that equal scores keep the row-major
// scan order.
//
// Arguments:
//   - regions: The candidate detections; the input slice is not modified.
//   - iouThreshold: The overlap above which a region is suppressed.
//
// Returns:
//   - The surviving regions, highest score first. Applying NMS to its own
//     output yields the same set.
func NMS(regions []common.Region, iouThreshold float64) []common.Region {
	if len(regions) == 0 {
		return nil
	}

	sorted := make([]common.Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	kept := make([]common.Region, 0, len(sorted))
	for _, candidate := range sorted {
		keep := true
		for _, winner := range kept {
			if common.IoU(candidate, winner) > iouThreshold {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, candidate)
		}
	}

	return kept
}
