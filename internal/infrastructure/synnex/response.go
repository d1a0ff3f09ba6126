package synnex

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

type responseDocument struct {
	XMLName       xml.Name          `xml:"SynnexB2B"`
	OrderResponse orderResponseBody `xml:"OrderResponse"`
}

type orderResponseBody struct {
	CustomerNumber      string         `xml:"CustomerNumber"`
	PONumber            string         `xml:"PONumber"`
	Code                string         `xml:"Code"`
	Reason              string         `xml:"Reason"`
	ResponseDateTime    string         `xml:"ResponseDateTime"`
	ResponseElapsedTime string         `xml:"ResponseElapsedTime"`
	Items               itemsContainer `xml:"Items"`
}

type itemsContainer struct {
	Item []responseItem `xml:"Item"`
}

type responseItem struct {
	LineNumber              string `xml:"lineNumber,attr"`
	SKU                     string `xml:"SKU"`
	OrderQuantity           string `xml:"OrderQuantity"`
	Code                    string `xml:"Code"`
	Reason                  string `xml:"Reason"`
	OrderNumber             string `xml:"OrderNumber"`
	OrderType               string `xml:"OrderType"`
	ShipFromWarehouse       string `xml:"ShipFromWarehouse"`
	SynnexInternalReference string `xml:"SynnexInternalReference"`
}

// DecodeResponse parses the distributor's raw order-response XML into a
// submission result. A single bare Item element and a multi-item list decode
// into the same uniform sequence. On a parse failure the error is returned so
// the caller can still persist the raw payload for manual inspection.
func DecodeResponse(orderID, rawXML string, now time.Time) (*domain.SubmissionResult, error) {
	var doc responseDocument
	if err := xml.Unmarshal([]byte(rawXML), &doc); err != nil {
		return nil, fmt.Errorf("invalid distributor response XML: %w", err)
	}

	body := doc.OrderResponse
	result := &domain.SubmissionResult{
		OrderID:         orderID,
		PONumber:        body.PONumber,
		CustomerNumber:  body.CustomerNumber,
		StatusCode:      body.Code,
		RejectionReason: body.Reason,
		RawXML:          rawXML,
		CreatedAt:       now,
	}

	for _, item := range body.Items.Item {
		result.Items = append(result.Items, domain.LineResult{
			LineNumber:        item.LineNumber,
			SKU:               item.SKU,
			Quantity:          item.OrderQuantity,
			Code:              item.Code,
			Reason:            item.Reason,
			OrderNumber:       item.OrderNumber,
			OrderType:         item.OrderType,
			Warehouse:         item.ShipFromWarehouse,
			InternalReference: item.SynnexInternalReference,
		})
	}

	decoded, err := json.Marshal(struct {
		CustomerNumber      string              `json:"customer_number"`
		PONumber            string              `json:"po_number"`
		Code                string              `json:"code"`
		Reason              string              `json:"reason,omitempty"`
		ResponseDateTime    string              `json:"response_date_time,omitempty"`
		ResponseElapsedTime string              `json:"response_elapsed_time,omitempty"`
		Items               []domain.LineResult `json:"items"`
	}{
		CustomerNumber:      body.CustomerNumber,
		PONumber:            body.PONumber,
		Code:                body.Code,
		Reason:              body.Reason,
		ResponseDateTime:    body.ResponseDateTime,
		ResponseElapsedTime: body.ResponseElapsedTime,
		Items:               result.Items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode decoded response tree: %w", err)
	}
	result.Decoded = decoded

	return result, nil
}
