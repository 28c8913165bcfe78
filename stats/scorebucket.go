package stats

const (
	maxLutScore   int = 95
	maxCheckScore int = 120
)

// ScoreBuckets
//
// 用來快速定位得分 ->  DistRecord 位置 O(1)
//
// 請勿修改預設值
//   - score區間: 得分區間 [0,0], (0,5), [5,10), ..., [95,120), [120, +inf)
type ScoreBuckets struct {
	scoreBucket    []int
	scoreBucketStr []string
	bucket         *ScoreBucket
}

type ScoreBucket struct {
	maxCheckScore int
	lutMaxScore   int
	scoreBounds   []int
	scoreLUT      []int
	justOverIdx   int
	maxIdx        int
}

// Buckets
//
// 用來快速定位得分 ->  DistRecord 位置 O(1)
//
// 請勿修改預設值
//   - score區間: 得分區間 [0,0], (0,5), [5,10), ..., [95,120), [120, +inf)
var Buckets *ScoreBuckets = &ScoreBuckets{
	scoreBucket:    []int{0, 5, 10, 15, 20, 30, 40, 50, 60, 70, 80, 95, 120},
	scoreBucketStr: []string{"[0,0]", "(0,5)", "[5,10)", "[10,15)", "[15,20)", "[20,30)", "[30,40)", "[40,50)", "[50,60)", "[60,70)", "[70,80)", "[80,95)", "[95,120)", "[120,+inf)"},
}

func (b *ScoreBuckets) ScoreBucketStr() []string {
	return b.scoreBucketStr
}

func (b *ScoreBuckets) Bucket() *ScoreBucket {
	if b.bucket == nil {
		b.bucket = b.buildBucket()
	}
	return b.bucket
}

func (b *ScoreBuckets) buildBucket() *ScoreBucket {
	// LUT 只建到 95 分，之上靠溢位層分流
	bounds := b.scoreBucket

	// 建立LUT反查表
	lut := make([]int, maxLutScore) // lut[score] = idx

	// 由 (0,5) 這個區間開始
	idx := 1
	last := len(bounds) - 1

	lut[0] = 0
	for i := 1; i < maxLutScore; i++ {
		// 僅在還有更高邊界時才前進 idx，避免越界讀取
		for idx < last && i >= bounds[idx] {
			idx++
		}
		lut[i] = idx
	}

	return &ScoreBucket{
		maxCheckScore: maxCheckScore,
		lutMaxScore:   maxLutScore,
		scoreBounds:   bounds,
		scoreLUT:      lut,
		justOverIdx:   len(bounds) - 1,
		maxIdx:        len(bounds),
	}
}

func (sb *ScoreBucket) Index(score int) int {
	if score >= sb.lutMaxScore {
		if score >= sb.maxCheckScore {
			return sb.maxIdx
		}
		return sb.justOverIdx
	}
	return sb.scoreLUT[score]
}
