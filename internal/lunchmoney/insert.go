package lunchmoney

import "strings"

// duplicateMarker is the substring the ledger uses for an existing external_id.
const duplicateMarker = "already exists"

// insertResponse is the raw POST /transactions reply. Either field may be absent.
type insertResponse struct {
	IDs   []int64  `json:"ids"`
	Error []string `json:"error"`
}

// responseShape names the four reply variants.
type responseShape int

const (
	shapeEmpty responseShape = iota
	shapeIDsOnly
	shapeIDsWithErrors
	shapeErrorsOnly
)

func (r insertResponse) shape() responseShape {
	hasIDs, hasErrs := r.IDs != nil, r.Error != nil
	switch {
	case hasIDs && hasErrs:
		return shapeIDsWithErrors
	case hasIDs:
		return shapeIDsOnly
	case hasErrs:
		return shapeErrorsOnly
	default:
		return shapeEmpty
	}
}

// InsertResult is the resolved outcome of inserting one transaction.
type InsertResult struct {
	ID        int64
	Inserted  bool
	Duplicate bool
	Errors    []string // non-duplicate error messages reported by the ledger
}

func (r insertResponse) resolve() InsertResult {
	var res InsertResult
	switch r.shape() {
	case shapeIDsWithErrors, shapeErrorsOnly:
		for _, msg := range r.Error {
			if strings.Contains(msg, duplicateMarker) {
				res.Duplicate = true
				return res
			}
			res.Errors = append(res.Errors, msg)
		}
	}
	switch r.shape() {
	case shapeIDsOnly, shapeIDsWithErrors:
		if len(r.IDs) > 0 {
			res.ID = r.IDs[0]
			res.Inserted = true
		}
	}
	return res
}
