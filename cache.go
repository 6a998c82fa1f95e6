package bthost

// MaxFeaturePages is the number of LMP feature pages kept per device.
const MaxFeaturePages = 3

// FeaturePages holds the remote LMP feature pages read so far.
type FeaturePages struct {
	Pages [MaxFeaturePages][8]byte `json:"pages"`
	Valid int                      `json:"valid"`
}

// Has reports whether bit is set on the given page.
func (f FeaturePages) Has(page, octet int, mask byte) bool {
	if page < 0 || page >= f.Valid || octet < 0 || octet >= 8 {
		return false
	}
	return f.Pages[page][octet]&mask != 0
}

// FeatureCache stores remote feature pages across connections.
type FeatureCache interface {
	Store(addr BDAddr, f FeaturePages) error
	Load(addr BDAddr) (FeaturePages, error)
	Clear() error
}
