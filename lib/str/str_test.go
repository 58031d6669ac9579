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
	"testing"
)

func TestInt(t *testing.T) {
	if Int("5400") != 5400 {
		t.Errorf("expected 5400\n")
	}
	if Int(" 90 ") != 90 {
		t.Errorf("expected 90\n")
	}
	if Int("") != nil || Int("n/a") != nil {
		t.Errorf("expected nil\n")
	}
	if Nil("") != nil || Nil("a") != "a" {
		t.Errorf("Nil failed\n")
	}
}
