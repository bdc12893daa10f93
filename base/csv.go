// Copyright 2026 cinerec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"bufio"
	"io"
	"strings"

	"github.com/juju/errors"
)

const utf8BOM = "\uFEFF"

// Escape text for csv.
func Escape(text string) string {
	if !strings.ContainsAny(text, ",\"\n\r") {
		return text
	}
	builder := strings.Builder{}
	builder.WriteRune('"')
	for _, c := range text {
		if c == '"' {
			builder.WriteString("\"\"")
		} else {
			builder.WriteRune(c)
		}
	}
	builder.WriteRune('"')
	return builder.String()
}

// ReadLines parses fields of each record of a csv stream. A field starting with a quote
// may contain separators, doubled quotes and line breaks. A quote anywhere else is kept
// as a literal character. The handler receives the record number (starting from 0) and
// stops the scan by returning false. A leading UTF-8 byte order mark is dropped. An
// input ending inside a quoted field is not valid.
func ReadLines(r io.Reader, sep rune, handler func(int, []string) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	recordCount := 0             // number of current record
	fields := make([]string, 0)  // fields for current record
	builder := strings.Builder{} // string builder for current field
	quoted := false              // whether current position in quote
	fieldStart := true           // whether current position starts a field
	first := true
	for sc.Scan() {
		lineStr := sc.Text()
		if first {
			lineStr = strings.TrimPrefix(lineStr, utf8BOM)
			first = false
		}
		line := []rune(strings.TrimSuffix(lineStr, "\r"))
		if quoted {
			builder.WriteString("\n")
		}
		for i := 0; i < len(line); i++ {
			switch {
			case quoted:
				if line[i] != '"' {
					builder.WriteRune(line[i])
				} else if i+1 < len(line) && line[i+1] == '"' {
					i++
					builder.WriteRune('"')
				} else {
					quoted = false
				}
			case line[i] == sep:
				// end of field
				fields = append(fields, builder.String())
				builder.Reset()
				fieldStart = true
				continue
			case line[i] == '"' && fieldStart:
				quoted = true
			default:
				builder.WriteRune(line[i])
			}
			fieldStart = false
		}
		// end of record
		if !quoted {
			fields = append(fields, builder.String())
			builder.Reset()
			fieldStart = true
			if !handler(recordCount, fields) {
				return nil
			}
			fields = []string{}
			recordCount++
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if quoted {
		return errors.NotValidf("record %d with unterminated quote", recordCount)
	}
	return nil
}
