package market

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/rohmanhakim/coffee-indicators/pkg/timeutil"
	"github.com/vmihailenco/msgpack/v5"
)

type Currency string

const (
	CurrencyCOP Currency = "COP"
)

// CoffeePrice is the single headline internal price, dated by the day it was read.
type CoffeePrice struct {
	value    float64
	currency Currency
	date     timeutil.Date
}

func NewCoffeePrice(value float64, date timeutil.Date) (CoffeePrice, error) {
	if date.IsZero() {
		return CoffeePrice{}, ErrZeroPublicationDate
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return CoffeePrice{}, fmt.Errorf("%w: value", ErrNonFiniteAmount)
	}
	return CoffeePrice{value: value, currency: CurrencyCOP, date: date}, nil
}

func (p CoffeePrice) Value() float64 {
	return p.value
}

func (p CoffeePrice) Currency() Currency {
	return p.currency
}

func (p CoffeePrice) Date() timeutil.Date {
	return p.date
}

type priceDTO struct {
	Value    float64  `json:"value" msgpack:"value"`
	Currency Currency `json:"currency" msgpack:"currency"`
	Date     string   `json:"date" msgpack:"date"`
}

func (p CoffeePrice) toDTO() priceDTO {
	return priceDTO{Value: p.value, Currency: p.currency, Date: p.date.String()}
}

func newPriceFromDTO(dto priceDTO) (CoffeePrice, error) {
	date, err := timeutil.ParseDate(dto.Date)
	if err != nil {
		return CoffeePrice{}, err
	}
	if dto.Currency != CurrencyCOP {
		return CoffeePrice{}, fmt.Errorf("unsupported currency %q", dto.Currency)
	}
	return NewCoffeePrice(dto.Value, date)
}

func (p CoffeePrice) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.toDTO())
}

func (p *CoffeePrice) UnmarshalJSON(data []byte) error {
	var dto priceDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	decoded, err := newPriceFromDTO(dto)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func (p CoffeePrice) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(p.toDTO())
}

func (p *CoffeePrice) DecodeMsgpack(dec *msgpack.Decoder) error {
	var dto priceDTO
	if err := dec.Decode(&dto); err != nil {
		return err
	}
	decoded, err := newPriceFromDTO(dto)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
