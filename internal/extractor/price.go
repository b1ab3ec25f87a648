package extractor

import (
	"fmt"
	"strings"

	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
)

// PriceSelector points at the highlighted reference price on the home page.
const PriceSelector = `li[tabindex="1"] strong`

const FieldPrice = "price_cop"

// ParsePrice reads the single highlighted price amount from the publisher's home page.
func ParsePrice(body []byte) (float64, failure.ClassifiedError) {
	value, err := parsePrice(body)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func parsePrice(body []byte) (float64, *ExtractionError) {
	doc, err := parseDocument(body)
	if err != nil {
		return 0, err
	}

	node := doc.Find(PriceSelector).First()
	if node.Length() == 0 {
		return 0, &ExtractionError{
			Message: fmt.Sprintf("no elements match %q", PriceSelector),
			Cause:   ErrCauseSelectorNotFound,
			Field:   FieldPrice,
		}
	}

	value, parseErr := ParseMoney(strings.TrimSpace(node.Text()))
	if parseErr != nil {
		return 0, &ExtractionError{
			Message: parseErr.Error(),
			Cause:   ErrCauseMoneyParse,
			Field:   FieldPrice,
		}
	}
	return value, nil
}
