package market

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/rohmanhakim/coffee-indicators/pkg/timeutil"
	"github.com/vmihailenco/msgpack/v5"
)

// CoffeeMarketIndicators is the daily set of coffee market figures published by the
// federation. Values are immutable once constructed; a newer publication supersedes
// the record instead of editing it.
type CoffeeMarketIndicators struct {
	publicationDate    timeutil.Date
	internalPriceCOP   float64
	pasillaCOP         float64
	nyPriceUSD         float64
	exchangeRateCOPUSD float64
	mecicCOP           float64
}

// NewCoffeeMarketIndicators validates and builds a record.
// The publication date and every amount must be usable; the record is never
// returned in a partially valid state.
func NewCoffeeMarketIndicators(
	publicationDate timeutil.Date,
	internalPriceCOP float64,
	pasillaCOP float64,
	nyPriceUSD float64,
	exchangeRateCOPUSD float64,
	mecicCOP float64,
) (CoffeeMarketIndicators, error) {
	if publicationDate.IsZero() {
		return CoffeeMarketIndicators{}, ErrZeroPublicationDate
	}
	amounts := []struct {
		field string
		value float64
	}{
		{"internal_price_cop", internalPriceCOP},
		{"pasilla_cop", pasillaCOP},
		{"ny_price_usd", nyPriceUSD},
		{"exchange_rate_cop_usd", exchangeRateCOPUSD},
		{"mecic_cop", mecicCOP},
	}
	for _, a := range amounts {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) {
			return CoffeeMarketIndicators{}, fmt.Errorf("%w: %s", ErrNonFiniteAmount, a.field)
		}
	}

	return CoffeeMarketIndicators{
		publicationDate:    publicationDate,
		internalPriceCOP:   internalPriceCOP,
		pasillaCOP:         pasillaCOP,
		nyPriceUSD:         nyPriceUSD,
		exchangeRateCOPUSD: exchangeRateCOPUSD,
		mecicCOP:           mecicCOP,
	}, nil
}

func (c CoffeeMarketIndicators) PublicationDate() timeutil.Date {
	return c.publicationDate
}

func (c CoffeeMarketIndicators) InternalPriceCOP() float64 {
	return c.internalPriceCOP
}

func (c CoffeeMarketIndicators) PasillaCOP() float64 {
	return c.pasillaCOP
}

func (c CoffeeMarketIndicators) NYPriceUSD() float64 {
	return c.nyPriceUSD
}

func (c CoffeeMarketIndicators) ExchangeRateCOPUSD() float64 {
	return c.exchangeRateCOPUSD
}

func (c CoffeeMarketIndicators) MecicCOP() float64 {
	return c.mecicCOP
}

// IsPublishedOn reports whether the record was published on the given date.
func (c CoffeeMarketIndicators) IsPublishedOn(date timeutil.Date) bool {
	return c.publicationDate == date
}

// indicatorsDTO is the wire form shared by every codec.
type indicatorsDTO struct {
	PublicationDate    string  `json:"publication_date" msgpack:"publication_date"`
	InternalPriceCOP   float64 `json:"internal_price_cop" msgpack:"internal_price_cop"`
	PasillaCOP         float64 `json:"pasilla_cop" msgpack:"pasilla_cop"`
	NYPriceUSD         float64 `json:"ny_price_usd" msgpack:"ny_price_usd"`
	ExchangeRateCOPUSD float64 `json:"exchange_rate_cop_usd" msgpack:"exchange_rate_cop_usd"`
	MecicCOP           float64 `json:"mecic_cop" msgpack:"mecic_cop"`
}

func (c CoffeeMarketIndicators) toDTO() indicatorsDTO {
	return indicatorsDTO{
		PublicationDate:    c.publicationDate.String(),
		InternalPriceCOP:   c.internalPriceCOP,
		PasillaCOP:         c.pasillaCOP,
		NYPriceUSD:         c.nyPriceUSD,
		ExchangeRateCOPUSD: c.exchangeRateCOPUSD,
		MecicCOP:           c.mecicCOP,
	}
}

func newIndicatorsFromDTO(dto indicatorsDTO) (CoffeeMarketIndicators, error) {
	date, err := timeutil.ParseDate(dto.PublicationDate)
	if err != nil {
		return CoffeeMarketIndicators{}, err
	}
	return NewCoffeeMarketIndicators(
		date,
		dto.InternalPriceCOP,
		dto.PasillaCOP,
		dto.NYPriceUSD,
		dto.ExchangeRateCOPUSD,
		dto.MecicCOP,
	)
}

func (c CoffeeMarketIndicators) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toDTO())
}

func (c *CoffeeMarketIndicators) UnmarshalJSON(data []byte) error {
	var dto indicatorsDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	decoded, err := newIndicatorsFromDTO(dto)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

func (c CoffeeMarketIndicators) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(c.toDTO())
}

func (c *CoffeeMarketIndicators) DecodeMsgpack(dec *msgpack.Decoder) error {
	var dto indicatorsDTO
	if err := dec.Decode(&dto); err != nil {
		return err
	}
	decoded, err := newIndicatorsFromDTO(dto)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}
