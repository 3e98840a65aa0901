package graph

// Kind classifies a single interaction between two users.
type Kind uint8

const (
	Retweet Kind = iota
	Mention
	Quote
	Reply
	numKinds
)

var kindCodes = [numKinds]string{"R", "M", "Q", "C"}

// Code returns the single-letter wire code for the kind.
func (k Kind) Code() string {
	if k >= numKinds {
		return "?"
	}
	return kindCodes[k]
}

// Valid reports whether k is one of the four recognized kinds.
func (k Kind) Valid() bool { return k < numKinds }

// KindSet is a small bitset of interaction kinds on an edge.
type KindSet uint8

func (s KindSet) Has(k Kind) bool { return s&(1<<k) != 0 }

func (s *KindSet) Add(k Kind) { *s |= 1 << k }

func (s KindSet) Empty() bool { return s == 0 }

// Code renders the set as concatenated codes in fixed R,M,Q,C order,
// independent of insertion order.
func (s KindSet) Code() string {
	out := ""
	for k := Kind(0); k < numKinds; k++ {
		if s.Has(k) { out += kindCodes[k] }
	}
	return out
}
