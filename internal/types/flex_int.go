// flex_int.go
//
// Royalty split sheets, notifications and account deletion for songwriters
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of split-sheet-webapp.
// split-sheet-webapp is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// split-sheet-webapp is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with split-sheet-webapp.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// OptionalInt is an int that may be absent and can be unmarshaled from either
// a JSON number or a JSON string. It carries optimistic-lock versions.
type OptionalInt struct {
	Value int
	Set   bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *OptionalInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = OptionalInt{}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = OptionalInt{Value: n, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = OptionalInt{}
			return nil
		}
		val, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("OptionalInt: invalid int string %q: %w", s, err)
		}
		*f = OptionalInt{Value: val, Set: true}
		return nil
	}

	return fmt.Errorf("OptionalInt: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f OptionalInt) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
