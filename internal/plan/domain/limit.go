package domain

import "encoding/json"

// Limit is a plan quota: either unlimited or capped at a maximum count.
// The zero value is a cap of zero. The unlimited flag never serializes
// as a sentinel number.
type Limit struct {
	unlimited bool
	max       int64
}

func Unlimited() Limit {
	return Limit{unlimited: true}
}

func LimitOf(max int64) Limit {
	return Limit{max: max}
}

func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Max returns the cap and true when the limit is bounded.
func (l Limit) Max() (int64, bool) {
	if l.unlimited {
		return 0, false
	}
	return l.max, true
}

// Allows reports whether one more item may be created given the current count.
func (l Limit) Allows(current int64) bool {
	if l.unlimited {
		return true
	}
	return current < l.max
}

type limitJSON struct {
	Unlimited bool   `json:"unlimited"`
	Max       *int64 `json:"max,omitempty"`
}

func (l Limit) MarshalJSON() ([]byte, error) {
	out := limitJSON{Unlimited: l.unlimited}
	if !l.unlimited {
		max := l.max
		out.Max = &max
	}
	return json.Marshal(out)
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	var in limitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Unlimited {
		*l = Unlimited()
		return nil
	}
	var max int64
	if in.Max != nil {
		max = *in.Max
	}
	*l = LimitOf(max)
	return nil
}
