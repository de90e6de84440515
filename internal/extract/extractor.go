package extract

import (
	"cloud.google.com/go/civil"

	"github.com/joseph-ayodele/bukti-setor/internal/normalize"
)

type Config struct {
	MinPlausibleAmount normalize.Amount // zero uses DefaultMinPlausibleAmount
}

// Extractor holds the four field cascades. The cascades share no state, so one
// Extractor serves every page concurrently.
type Extractor struct {
	code   []Strategy[string]
	date   []Strategy[civil.Date]
	amount []Strategy[normalize.Amount]
	ntpn   []Strategy[string]
}

func New(cfg Config) *Extractor {
	if cfg.MinPlausibleAmount.IsZero() {
		cfg.MinPlausibleAmount = DefaultMinPlausibleAmount
	}
	return &Extractor{
		code:   CodeStrategies(),
		date:   DateStrategies(),
		amount: AmountStrategies(cfg.MinPlausibleAmount),
		ntpn:   NTPNStrategies(),
	}
}

func (e *Extractor) Code(t Text) Result[string] { return Run(t, e.code) }

func (e *Extractor) Date(t Text) Result[civil.Date] { return Run(t, e.date) }

func (e *Extractor) Amount(t Text) Result[normalize.Amount] { return Run(t, e.amount) }

func (e *Extractor) NTPN(t Text) Result[string] { return Run(t, e.ntpn) }
