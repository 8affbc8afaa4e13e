// Copyright 2019-2024 Xu Ruibo (hustxurb@163.com) and Contributors
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

package refcnt

// Convert returns a handle of element type T sharing r's referent, taking
// its own reference. Relatedness follows Go's type assertions: a concrete
// referent converts to any interface it implements, and an interface
// referent converts back to its dynamic type. Converting a non-null
// referent to an unrelated type panics; a null handle converts to the null
// handle of any element type.
func Convert[T, U Counted](r Ref[U]) Ref[T] {
	if r.Empty() {
		return Ref[T]{}
	}
	return NewRef(any(r.obj).(T))
}

// MoveConvert is Convert with move semantics: r is emptied, its reference
// is handed to the returned handle, and the count is untouched.
func MoveConvert[T, U Counted](r *Ref[U]) Ref[T] {
	if r.Empty() {
		return Ref[T]{}
	}
	return Ref[T]{obj: any(r.Detach()).(T)}
}
