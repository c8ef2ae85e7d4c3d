package pagination

import (
	"math"
	"net/url"
	"strconv"
)

const MaxLimit = 100

// maxPage - при любом limit <= MaxLimit смещение Skip не переполняет int
const maxPage = math.MaxInt / MaxLimit

// Params - параметры страницы из query string (?page=&limit=)
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"-"`
}

// FromQuery читает page и limit; некорректные значения заменяются дефолтами,
// слишком большие прижимаются к maxPage и MaxLimit
func FromQuery(q url.Values, defaultLimit int) Params {
	p := Params{Page: 1, Limit: defaultLimit}

	if page := q.Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = min(v, maxPage)
		}
	}

	if limit := q.Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 {
			p.Limit = min(v, MaxLimit)
		}
	}

	p.Skip = (p.Page - 1) * p.Limit
	return p
}

// Meta - блок pagination в ответах API
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewMeta(total int64, p Params) Meta {
	pages := int64(0)
	if p.Limit > 0 {
		pages = total / int64(p.Limit)
		if total%int64(p.Limit) > 0 {
			pages++
		}
	}

	return Meta{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: pages,
	}
}
