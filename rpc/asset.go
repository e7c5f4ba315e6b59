package rpc

import (
	"studbook/horse"
	"studbook/ledger"
)

var _ ledger.AssetLedger = (*Client)(nil)

// RegisterResponse is the result of 'registerasset' rpc call.
type RegisterResponse struct {
	jsonRPCResponse
	Result uint64 `json:"result"`
}

// AttributesResponse is the result of 'getattributes' rpc call.
type AttributesResponse struct {
	jsonRPCResponse
	Result *RawAttributes `json:"result"`
}

// RawAttributes is the inner struct of struct 'AttributesResponse'.
type RawAttributes struct {
	ID          uint64 `json:"id"`
	Owner       string `json:"owner"`
	ContentHash string `json:"contenthash"`
	Genotype    uint8  `json:"genotype"`
	Bloodline   string `json:"bloodline"`
	Sex         string `json:"sex"`
}

// VersionResponse is the result of 'getversion' rpc call.
type VersionResponse struct {
	jsonRPCResponse
	Result struct {
		Port      int    `json:"port"`
		Nonce     uint32 `json:"nonce"`
		UserAgent string `json:"useragent"`
	} `json:"result"`
}

// RegisterAsset creates a horse on one node. A failed request is not resent
// to another node since the first may already have registered it.
func (c *Client) RegisterAsset(owner string, genotype uint8, bloodline horse.Bloodline, contentHash string) (uint64, error) {
	params := []interface{}{owner, genotype, string(bloodline), contentHash}
	resp := RegisterResponse{}

	if err := c.call("registerasset", params, &resp, false); err != nil {
		return 0, err
	}

	return resp.Result, nil
}

// GetAttributes returns the record of horse id, zero attributes if unknown.
func (c *Client) GetAttributes(id uint64) (horse.Attributes, error) {
	params := []interface{}{id}
	resp := AttributesResponse{}

	if err := c.call("getattributes", params, &resp, true); err != nil {
		return horse.Attributes{}, err
	}

	if resp.Result == nil {
		return horse.Attributes{ID: id}, nil
	}

	raw := resp.Result
	return horse.Attributes{
		ID:          id,
		Owner:       raw.Owner,
		ContentHash: raw.ContentHash,
		Traits: horse.Traits{
			Genotype:  raw.Genotype,
			Bloodline: horse.Bloodline(raw.Bloodline),
			Sex:       parseSex(raw.Sex),
		},
	}, nil
}

func (c *Client) getVersionFrom(url string) (string, error) {
	resp := VersionResponse{}
	if err := c.do(url, "getversion", nil, &resp); err != nil {
		return "", err
	}

	return resp.Result.UserAgent, nil
}

func parseSex(s string) horse.Sex {
	switch s {
	case horse.Male.String():
		return horse.Male
	case horse.Female.String():
		return horse.Female
	default:
		return horse.Unknown
	}
}
