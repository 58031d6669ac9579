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

package date

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// SplitStart splits a combined "yyyy-mm-dd hh:mm:ss" start into its date and
// time parts. A value without a time part gives an empty time. Parts that
// don't look like a date or time are returned as empty strings.
func SplitStart(start string) (day, clock string) {
	start = strings.TrimSpace(start)
	if len(start) < len(DateLayout) {
		return "", ""
	}
	day = start[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, day); err != nil {
		return "", ""
	}
	if len(start) > len(DateLayout)+1 {
		clock = strings.TrimSpace(start[len(DateLayout)+1:])
		if _, err := time.Parse(TimeLayout, clock); err != nil {
			if _, err := time.Parse("15:04", clock); err != nil {
				clock = ""
			}
		}
	}
	return day, clock
}
