package engine

// RecordValidator rejects candidate records that lack the minimum required
// fields. Rejections carry a reason code that feeds the run's rejection
// histogram; nothing here ever panics or returns an error.
type RecordValidator struct {
	cg *CompiledGrammar
}

// NewRecordValidator creates a validator for the given compiled grammar.
func NewRecordValidator(cg *CompiledGrammar) *RecordValidator {
	return &RecordValidator{cg: cg}
}

// Validate accepts a candidate record when its slip id is present and
// numeric-shaped, its warehouse code is non-empty, and at least three of the
// five leading positional fields are populated.
func (v *RecordValidator) Validate(rec *DeliveryRecord) (reason RejectReason, ok bool) {
	if rec.SlipID == "" || !v.cg.slip.MatchString(rec.SlipID) {
		return ReasonMissingIdentifier, false
	}
	if rec.WarehouseCode == "" {
		return ReasonInsufficientFields, false
	}

	populated := 0
	if rec.WarehouseCode != "" {
		populated++
	}
	if rec.SlipID != "" {
		populated++
	}
	if rec.ReturnDate != nil {
		populated++
	}
	if rec.JobsiteID != "" {
		populated++
	}
	if rec.CostCenter != "" {
		populated++
	}
	if populated < 3 {
		return ReasonInsufficientFields, false
	}

	return "", true
}
