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

package festival

var venueColumns = []Column{
	col("id", integer, "id"),
	col("name", plain, "name"),
	col("company", plain, "company"),
	col("company_id", integer, "company_id"),
	col("city", plain, "company_contact.address.city"),
}

func projectVenues(r *Run, items interface{}) (Report, error) {
	report := Report{Task: TaskVenues}
	err := r.each(&report, items, func(id int, item interface{}) error {
		return r.sink.Upsert("venues", []string{"id"}, columns(item, venueColumns))
	})
	return report, err
}
