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

import "github.com/juju/errors"

// ErrDataUnavailable marks errors raised when a source table cannot be read at all,
// e.g. a missing file, collection or SQL table.
const ErrDataUnavailable = errors.ConstError("data unavailable")

// DataUnavailablef creates an error of type ErrDataUnavailable.
func DataUnavailablef(format string, args ...any) error {
	return errors.WithType(errors.Errorf(format, args...), ErrDataUnavailable)
}

// NewDataUnavailable wraps err as an ErrDataUnavailable error.
func NewDataUnavailable(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.WithType(errors.Annotate(err, msg), ErrDataUnavailable)
}

// IsDataUnavailable reports whether any error in err's chain is ErrDataUnavailable.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}
