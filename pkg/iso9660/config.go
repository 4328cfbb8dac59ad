package iso9660

// Namespace selects which on-disc naming scheme the decoder should prefer
// when more than one is present.
type Namespace int

const (
	NamespaceAuto Namespace = iota
	NamespacePrimary
	NamespaceJoliet
	NamespaceRockRidge
)

// Config holds the decoder's tunable knobs. The zero value is not valid;
// use DefaultConfig.
type Config struct {
	PreferNamespace   Namespace
	StrictBothEndian  bool
	StrictJoliet      bool
	StripVersionSuffix bool
	MaxSuspHops       int
	MaxAssembledField int

	// Logger receives warnings for conditions that are recoverable under
	// a lenient configuration (e.g. a both-endian mismatch tolerated via
	// StrictBothEndian=false). SF entries are skipped by the SUSP walk like
	// any unrecognized tag and produce no warning. Nil disables logging.
	Logger Logger
}

// Logger is the minimal logging surface the decoder needs. *zap.Logger
// and zap.SugaredLogger's Warnw-shaped callers can trivially adapt to it.
// Neither cmd/isoreader nor pkg/isofuse sets one, so their decoders run
// with logging disabled.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// DefaultConfig matches spec.md §9's documented defaults.
func DefaultConfig() Config {
	return Config{
		PreferNamespace:    NamespaceAuto,
		StrictBothEndian:   true,
		StrictJoliet:       false,
		StripVersionSuffix: true,
		MaxSuspHops:        32,
		MaxAssembledField:  64 * 1024,
	}
}

func (c *Config) warnf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Warnf(format, args...)
	}
}
