package query

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const MaxLimit = 100

type Pagination struct {
	Limit  *int
	Offset *int
	Order  string
}

func GetPaginationFromQuery(reqCtx *gin.Context) (*Pagination, error) {
	limitStr := reqCtx.DefaultQuery("limit", "20")
	offsetStr := reqCtx.DefaultQuery("offset", "0")
	order := reqCtx.DefaultQuery("order", "asc")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("invalid limit number")
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return nil, fmt.Errorf("invalid offset number")
	}

	if order != "asc" && order != "desc" {
		return nil, fmt.Errorf("invalid order")
	}

	return &Pagination{
		Limit:  &limit,
		Offset: &offset,
		Order:  order,
	}, nil
}
