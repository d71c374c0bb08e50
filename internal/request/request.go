/*
Copyright 2024 Doozez Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package request holds the small helpers used for outbound JSON HTTP calls,
// shared by the payment gateway client and the notification sender.
package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ToJsonReq serializes the payload into a bytes buffer ready to be used as an
// HTTP request body.
func ToJsonReq(payload interface{}) (*bytes.Buffer, error) {
	c, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return bytes.NewBuffer(c), nil
}

// Call sends the request with a JSON content type and decodes the JSON
// response body into response. Pass nil to discard the body.
func Call(req *http.Request, response interface{}) (*http.Response, error) {
	return CallWithClient(&http.Client{Timeout: 30 * time.Second}, req, response)
}

// CallWithClient is Call with an injectable client, used by callers that need
// their own timeout or transport.
func CallWithClient(client *http.Client, req *http.Request, response interface{}) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return resp, err
	}
	defer func() { _ = resp.Body.Close() }()

	if response == nil {
		return resp, nil
	}
	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return resp, err
	}
	return resp, nil
}

// BearerAuth formats an Authorization header value for token-authenticated
// APIs such as the payment gateway.
func BearerAuth(token string) string {
	return fmt.Sprintf("Bearer %s", token)
}
