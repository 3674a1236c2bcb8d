package services

import "github.com/dmitrijs2005/opsdash/internal/common"

func decodeErr(resource string, err error) error {
	return common.NewQueryError("decode", resource, err)
}
