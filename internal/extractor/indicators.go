package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
	"github.com/rohmanhakim/coffee-indicators/pkg/timeutil"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Parse HTML into a DOM tree
- Locate the indicator list inside the indicators modal
- Map each label/value pair onto a typed record

Extraction Rules
- Labels are matched exactly after trimming; unknown labels are ignored
- Items without both a label and a bold value are skipped
- The publication date and the internal reference price are mandatory
- The remaining amounts default to zero when the page omits them

A relabeled upstream page fails loudly instead of producing a guessed record.
*/

const (
	IndicatorItemSelector = "#modal-indicadores .lista li"
	labelSelector         = ".name"
	valueSelector         = "strong"
)

const (
	LabelPublicationDate = "Fecha:"
	LabelInternalPrice   = "Precio interno de referencia:"
	LabelPasilla         = "Pasilla de finca:"
	LabelNYPrice         = "Bolsa de NY:"
	LabelExchangeRate    = "Tasa de cambio:"
	LabelMecic           = "MeCIC:"
)

// Field names reported by MissingField and parse errors.
const (
	FieldPublicationDate = "publication_date"
	FieldInternalPrice   = "internal_price_cop"
	FieldPasilla         = "pasilla_cop"
	FieldNYPrice         = "ny_price_usd"
	FieldExchangeRate    = "exchange_rate_cop_usd"
	FieldMecic           = "mecic_cop"
)

var moneyFields = map[string]string{
	LabelInternalPrice: FieldInternalPrice,
	LabelPasilla:       FieldPasilla,
	LabelNYPrice:       FieldNYPrice,
	LabelExchangeRate:  FieldExchangeRate,
	LabelMecic:         FieldMecic,
}

// ParseIndicators extracts a validated record from the publisher's home page.
func ParseIndicators(body []byte) (market.CoffeeMarketIndicators, failure.ClassifiedError) {
	indicators, err := parseIndicators(body)
	if err != nil {
		return market.CoffeeMarketIndicators{}, err
	}
	return indicators, nil
}

func parseIndicators(body []byte) (market.CoffeeMarketIndicators, *ExtractionError) {
	doc, err := parseDocument(body)
	if err != nil {
		return market.CoffeeMarketIndicators{}, err
	}

	items := doc.Find(IndicatorItemSelector)
	if items.Length() == 0 {
		return market.CoffeeMarketIndicators{}, &ExtractionError{
			Message: fmt.Sprintf("no elements match %q", IndicatorItemSelector),
			Cause:   ErrCauseSelectorNotFound,
		}
	}

	var publicationDate *timeutil.Date
	amounts := make(map[string]float64, len(moneyFields))

	var scanErr *ExtractionError
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		label, value, ok := labelValue(item)
		if !ok {
			return true
		}

		if label == LabelPublicationDate {
			date, err := timeutil.ParseDate(value)
			if err != nil {
				scanErr = &ExtractionError{
					Message: err.Error(),
					Cause:   ErrCauseDateParse,
					Field:   FieldPublicationDate,
				}
				return false
			}
			publicationDate = &date
			return true
		}

		field, known := moneyFields[label]
		if !known {
			return true
		}
		amount, err := ParseMoney(value)
		if err != nil {
			scanErr = &ExtractionError{
				Message: err.Error(),
				Cause:   ErrCauseMoneyParse,
				Field:   field,
			}
			return false
		}
		amounts[field] = amount
		return true
	})
	if scanErr != nil {
		return market.CoffeeMarketIndicators{}, scanErr
	}

	if publicationDate == nil {
		return market.CoffeeMarketIndicators{}, missingField(FieldPublicationDate)
	}
	internalPrice, ok := amounts[FieldInternalPrice]
	if !ok {
		return market.CoffeeMarketIndicators{}, missingField(FieldInternalPrice)
	}

	indicators, recErr := market.NewCoffeeMarketIndicators(
		*publicationDate,
		internalPrice,
		amounts[FieldPasilla],
		amounts[FieldNYPrice],
		amounts[FieldExchangeRate],
		amounts[FieldMecic],
	)
	if recErr != nil {
		return market.CoffeeMarketIndicators{}, &ExtractionError{
			Message: recErr.Error(),
			Cause:   ErrCauseInvalidRecord,
		}
	}
	return indicators, nil
}

func parseDocument(body []byte) (*goquery.Document, *ExtractionError) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ExtractionError{
			Message: fmt.Sprintf("failed to parse HTML: %v", err),
			Cause:   ErrCauseSelectorNotFound,
		}
	}
	return goquery.NewDocumentFromNode(root), nil
}

// labelValue returns the trimmed texts of the first label and value elements of item.
func labelValue(item *goquery.Selection) (string, string, bool) {
	labelNode := item.Find(labelSelector).First()
	valueNode := item.Find(valueSelector).First()
	if labelNode.Length() == 0 || valueNode.Length() == 0 {
		return "", "", false
	}
	return strings.TrimSpace(labelNode.Text()), strings.TrimSpace(valueNode.Text()), true
}

func missingField(field string) *ExtractionError {
	return &ExtractionError{
		Message: fmt.Sprintf("%s not found in indicator list", field),
		Cause:   ErrCauseMissingField,
		Field:   field,
	}
}
