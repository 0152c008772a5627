package parser

import (
	"github.com/hts-tools/rfq-processor/constants"
	"github.com/hts-tools/rfq-processor/internal/entity"
)

// Normalize turns a parse result into canonical records, in match order.
// Pure transform: quantity stays a string, the material whitelist is
// applied, and ExternalRef is left empty for the downstream manual step.
func Normalize(res Result) []entity.LineItemRecord {
	records := make([]entity.LineItemRecord, 0, len(res.Items))
	for _, item := range res.Items {
		records = append(records, entity.LineItemRecord{
			DocumentID:    res.DocumentID,
			LineNo:        item.LineNo,
			ExternalRef:   "",
			MaterialCode:  constants.FilterMaterialCode(item.Material),
			Description:   item.Description,
			NotesText:     item.NotesText,
			Quantity:      item.Quantity,
			UnitOfMeasure: item.Unit,
		})
	}
	return records
}
