package dto

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/customeros/mailadmin/internal/utils"
)

type Recipients []string

func (r *Recipients) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		var cleaned []string
		for _, item := range list {
			cleaned = append(cleaned, utils.SplitAddressList(item)...)
		}
		*r = cleaned
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return errors.New("recipients must be a string or a list of strings")
	}
	*r = utils.SplitAddressList(single)
	return nil
}
