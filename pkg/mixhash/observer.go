package mixhash

// Stage identifies a point in the mixing computation.
type Stage uint8

// Stages reported to an Observer, in the order they happen.
const (
	StageInit Stage = iota
	StageXor
	StageMulPrime
	StageShiftXor1
	StageMulMurmur
	StageShiftXor2
	StageFinal
)

var stageNames = [...]string{
	StageInit:      "initial",
	StageXor:       "xor byte",
	StageMulPrime:  "multiply by prime",
	StageShiftXor1: "xor with >>13",
	StageMulMurmur: "multiply by 0x5bd1e995",
	StageShiftXor2: "xor with >>15",
	StageFinal:     "final",
}

// String returns a human-readable stage name.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}

	return "unknown"
}

// Step is the accumulator state after one stage.
// Index and Byte are meaningful only for the per-byte stages.
type Step struct {
	Index int
	Byte  byte
	Stage Stage
	Value uint32
}

// Observer receives every intermediate state of a traced computation.
type Observer interface {
	ObserveStep(step Step)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(step Step)

// ObserveStep implements Observer.
func (f ObserverFunc) ObserveStep(step Step) { f(step) }

// Sum32Observed computes Sum32(data) and reports each intermediate state to obs.
// The observer only sees copies; the returned value always equals Sum32(data).
// A nil observer is allowed.
func Sum32Observed(data []byte, obs Observer) uint32 {
	if obs == nil {
		return Sum32(data)
	}

	h := OffsetBasis
	obs.ObserveStep(Step{Stage: StageInit, Value: h})

	for i, b := range data {
		h ^= uint32(b)
		obs.ObserveStep(Step{Index: i, Byte: b, Stage: StageXor, Value: h})

		h *= Prime
		obs.ObserveStep(Step{Index: i, Byte: b, Stage: StageMulPrime, Value: h})

		h ^= h >> Shift1
		obs.ObserveStep(Step{Index: i, Byte: b, Stage: StageShiftXor1, Value: h})

		h *= MurmurMul
		obs.ObserveStep(Step{Index: i, Byte: b, Stage: StageMulMurmur, Value: h})

		h ^= h >> Shift2
		obs.ObserveStep(Step{Index: i, Byte: b, Stage: StageShiftXor2, Value: h})
	}

	obs.ObserveStep(Step{Index: len(data), Stage: StageFinal, Value: h})

	return h
}
