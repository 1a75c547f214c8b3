package blogservice

import (
	"github.com/minthway/wayfarer/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(len(title) <= 200, "title", "must not be more than 200 characters long")
}

func validateParagraph(v *common.Validator, paragraph string) {
	v.Check(paragraph != "", "paragraph1", "must be provided")
	v.Check(len(paragraph) <= 10000, "paragraph1", "must not be more than 10000 characters long")
}

func validateID(v *common.Validator, id int64, name string) {
	v.Check(id > 0, name, "must be a positive integer")
}

func validateBestTime(v *common.Validator, start, end *int) {
	if start != nil {
		v.Check(*start >= 1 && *start <= 12, "best_time_start_month", "must be between 1 and 12")
	}
	if end != nil {
		v.Check(*end >= 1 && *end <= 12, "best_time_end_month", "must be between 1 and 12")
	}
	v.Check((start == nil) == (end == nil), "best_time_start_month", "start and end month must be provided together")
}

func validateCategoryIDs(v *common.Validator, ids []int64) {
	v.Check(len(ids) <= 10, "category_ids", "must not contain more than 10 categories")
	v.Check(common.Unique(ids), "category_ids", "must not contain duplicate values")
	for _, id := range ids {
		if id <= 0 {
			v.Check(false, "category_ids", "must contain positive integers only")
			break
		}
	}
}
