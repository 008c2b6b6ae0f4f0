package utils

import (
	"fmt"
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func (p *Pagination) GetPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

func (p *Pagination) GetSize() int {
	if p.Size < 1 || p.Size > maxPageSize {
		return defaultPageSize
	}
	return p.Size
}

func (p *Pagination) GetOffset() int {
	return (p.GetPage() - 1) * p.GetSize()
}

func (p *Pagination) GetLimit() int {
	return p.GetSize()
}

// GetPaginationFromCtx parses page/size query params with defaults.
func GetPaginationFromCtx(c echo.Context) (*Pagination, error) {
	p := &Pagination{Page: 1, Size: defaultPageSize}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid page: %w", err)
		}
		p.Page = page
	}
	if raw := c.QueryParam("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid size: %w", err)
		}
		p.Size = size
	}
	return p, nil
}

func GetTotalPages(totalCount, pageSize int) int {
	return int(math.Ceil(float64(totalCount) / float64(pageSize)))
}

func GetHasMore(currPage, totalCount, pageSize int) bool {
	return currPage*pageSize < totalCount
}
