// Copyright 2026 EngFlow Inc. All rights reserved.
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

// Package tokenio encodes preprocessed token streams for downstream consumers.
//
// The binary encoding uses the protocol buffer wire format of
//
//	message Token {
//	  int32 type = 1;
//	  int32 line = 2;
//	  int32 column = 3;
//	  string content = 4;
//	}
//	message TokenStream {
//	  repeated Token tokens = 1;
//	}
//
// so consumers in other languages can read it with any protobuf runtime.
package tokenio

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/EngFlow/ccpp/cpp/lexer"
)

const (
	streamTokensField protowire.Number = 1

	tokenTypeField    protowire.Number = 1
	tokenLineField    protowire.Number = 2
	tokenColumnField  protowire.Number = 3
	tokenContentField protowire.Number = 4
)

var ErrMalformed = errors.New("malformed token stream")

// MarshalBinary encodes tokens as a TokenStream message.
func MarshalBinary(tokens []lexer.Token) []byte {
	var out, msg []byte
	for _, token := range tokens {
		msg = appendToken(msg[:0], token)
		out = protowire.AppendTag(out, streamTokensField, protowire.BytesType)
		out = protowire.AppendBytes(out, msg)
	}
	return out
}

func appendToken(b []byte, token lexer.Token) []byte {
	// proto3 omits fields holding the zero value
	if token.Type != 0 {
		b = protowire.AppendTag(b, tokenTypeField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(token.Type))
	}
	if token.Location.Line != 0 {
		b = protowire.AppendTag(b, tokenLineField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(token.Location.Line))
	}
	if token.Location.Column != 0 {
		b = protowire.AppendTag(b, tokenColumnField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(token.Location.Column))
	}
	if token.Content != "" {
		b = protowire.AppendTag(b, tokenContentField, protowire.BytesType)
		b = protowire.AppendString(b, token.Content)
	}
	return b
}

// UnmarshalBinary decodes a TokenStream message. Unknown fields are skipped.
func UnmarshalBinary(data []byte) ([]lexer.Token, error) {
	var tokens []lexer.Token
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]
		if num != streamTokensField || typ != protowire.BytesType {
			if n = protowire.ConsumeFieldValue(num, typ, data); n < 0 {
				return nil, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}
		msg, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]
		token, err := consumeToken(msg)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", len(tokens), err)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func consumeToken(msg []byte) (lexer.Token, error) {
	var token lexer.Token
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return token, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		msg = msg[n:]
		switch {
		case typ == protowire.VarintType && (num == tokenTypeField || num == tokenLineField || num == tokenColumnField):
			v, n := protowire.ConsumeVarint(msg)
			if n < 0 {
				return token, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
			}
			msg = msg[n:]
			switch num {
			case tokenTypeField:
				token.Type = lexer.TokenType(v)
			case tokenLineField:
				token.Location.Line = int(v)
			case tokenColumnField:
				token.Location.Column = int(v)
			}
		case typ == protowire.BytesType && num == tokenContentField:
			v, n := protowire.ConsumeString(msg)
			if n < 0 {
				return token, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
			}
			msg = msg[n:]
			token.Content = v
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return token, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
			}
			msg = msg[n:]
		}
	}
	return token, nil
}
