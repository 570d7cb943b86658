package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"farmfinance/backend/models"
)

func listQuery(q url.Values) models.ListQuery {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.ListQuery{Page: page, Limit: limit, Sort: q.Get("sort")}
}

// dateParam parses an optional date query parameter, reading bare dates in
// loc. Absent values yield the zero time.
func dateParam(q url.Values, name string, loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := models.ParseDateIn(raw, loc)
	if err != nil {
		return time.Time{}, models.NewError(models.ErrBadRequest, "Invalid "+name)
	}
	return t, nil
}

func dateRangeParams(q url.Values, loc *time.Location) (time.Time, time.Time, error) {
	start, err := dateParam(q, "startDate", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := dateParam(q, "endDate", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func boolParam(q url.Values, name string) *bool {
	switch strings.ToLower(q.Get(name)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// listParam splits a comma separated parameter, dropping blanks.
func listParam(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func expenseFilter(q url.Values, loc *time.Location) (models.ExpenseFilter, error) {
	start, end, err := dateRangeParams(q, loc)
	if err != nil {
		return models.ExpenseFilter{}, err
	}
	return models.ExpenseFilter{
		ListQuery:   listQuery(q),
		Category:    q.Get("category"),
		IsRecurring: boolParam(q, "isRecurring"),
		StartDate:   start,
		EndDate:     end,
		Tags:        listParam(q, "tags"),
	}, nil
}

func incomeFilter(q url.Values, loc *time.Location) (models.IncomeFilter, error) {
	start, end, err := dateRangeParams(q, loc)
	if err != nil {
		return models.IncomeFilter{}, err
	}
	return models.IncomeFilter{
		ListQuery: listQuery(q),
		Product:   q.Get("product"),
		StartDate: start,
		EndDate:   end,
	}, nil
}
