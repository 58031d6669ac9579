// Copyright (C) 2023 The Eventival Authors.
//
// This file is part of Eventival.
//
// Eventival is free software: you can redistribute it and/or modify it under
// the terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Eventival is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public
// License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Eventival.  If not, see <https://www.gnu.org/licenses/>.

package str

import (
	"strconv"
	"strings"
)

// Int returns a as an int, or nil when a is empty or not a number. Suitable
// for nullable integer columns.
func Int(a string) interface{} {
	a = strings.TrimSpace(a)
	if a == "" {
		return nil
	}
	i, err := strconv.Atoi(a)
	if err != nil {
		return nil
	}
	return i
}

// Nil returns nil for the empty string and s otherwise.
func Nil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
