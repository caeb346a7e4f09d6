// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package submitapi submits transactions to a remote node over the submit API HTTP interface
package submitapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/ledger"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/provider"
	"github.com/go-resty/resty/v2"
)

const (
	SubmitPath     = "/api/submit/tx"
	DefaultTimeout = 30 * time.Second
)

type Client struct {
	client  *resty.Client
	logger  *slog.Logger
	baseUrl string
	timeout time.Duration
	headers map[string]string
	hc      *http.Client
}

var _ provider.Submitter = (*Client)(nil)

type ClientOptionFunc func(*Client)

func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a header to every request, such as an API key
func WithHeader(key string, value string) ClientOptionFunc {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHTTPClient specifies the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOptionFunc {
	return func(c *Client) {
		c.hc = hc
	}
}

func New(baseUrl string, opts ...ClientOptionFunc) *Client {
	c := &Client{
		logger:  slog.Default(),
		baseUrl: baseUrl,
		timeout: DefaultTimeout,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc != nil {
		c.client = resty.NewWithClient(c.hc)
	} else {
		c.client = resty.New()
	}
	c.client.SetHostURL(c.baseUrl).
		SetTimeout(c.timeout).
		SetHeaders(c.headers)
	return c
}

func (c *Client) Submit(
	ctx context.Context,
	tx *common.Transaction,
) (common.TransactionId, error) {
	txCbor, err := cbor.Encode(tx)
	if err != nil {
		return common.TransactionId{}, provider.Classify(err)
	}
	return c.submit(ctx, tx.Hash(), txCbor)
}

// SubmitCbor decodes the transaction locally to determine its ID before submitting it
func (c *Client) SubmitCbor(
	ctx context.Context,
	txCbor []byte,
) (common.TransactionId, error) {
	tx, err := ledger.NewTransactionFromCbor(txCbor)
	if err != nil {
		return common.TransactionId{}, provider.Classify(err)
	}
	return c.submit(ctx, tx.Hash(), txCbor)
}

func (c *Client) submit(
	ctx context.Context,
	txId common.TransactionId,
	txCbor []byte,
) (common.TransactionId, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/cbor").
		SetBody(txCbor).
		Post(SubmitPath)
	if err != nil {
		c.logger.Debug(
			"transaction submission failed",
			"tx_hash", txId.String(),
			"error", err,
		)
		return common.TransactionId{}, &provider.SubmitError{
			Kind: provider.ErrorKindInternalError,
			Err:  err,
		}
	}
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusAccepted:
	default:
		submitErr := provider.ClassifyHTTPStatus(resp.StatusCode(), resp.Body())
		c.logger.Debug(
			"transaction rejected",
			"tx_hash", txId.String(),
			"status", resp.StatusCode(),
			"error", submitErr,
		)
		return common.TransactionId{}, submitErr
	}
	// The response body is the JSON encoded transaction ID
	var remoteId string
	if err := json.Unmarshal(resp.Body(), &remoteId); err == nil && remoteId != txId.String() {
		c.logger.Warn(
			"submit API returned unexpected transaction ID",
			"tx_hash", txId.String(),
			"remote_tx_hash", remoteId,
		)
		return common.TransactionId{}, &provider.SubmitError{
			Kind: provider.ErrorKindInternalError,
			Err:  errors.New("transaction ID mismatch: " + remoteId),
		}
	}
	return txId, nil
}
