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

// Ref is an owning handle to a reference-counted object. A non-null handle
// accounts for exactly one reference on its referent; releasing the handle
// drops that reference, and dropping the last one destroys the object.
//
// The zero value is the null handle. Two handles of the same element type
// compare equal with == exactly when they refer to the same object.
//
// A plain struct copy duplicates the handle without taking a reference and
// leaves two handles accounting for one; duplicate with Clone, hand over
// with Move, and pass handles by pointer otherwise.
type Ref[T Counted] struct {
	obj T
}

// NewRef returns a handle sharing ownership of obj, taking a reference.
// Adopting an object fresh from its constructor, whose count is still
// zero, is the same operation: the new handle's reference is the first.
// A zero obj yields the null handle.
func NewRef[T Counted](obj T) Ref[T] {
	var zero T
	if obj != zero {
		obj.Acquire()
	}
	return Ref[T]{obj: obj}
}

// Get returns the raw referent without touching the count. For a null
// handle it returns the zero value, and using that fails at the use site
// the way a nil pointer does.
func (r Ref[T]) Get() T {
	return r.obj
}

// Empty reports whether r is the null handle.
func (r Ref[T]) Empty() bool {
	var zero T
	return r.obj == zero
}

// Is reports whether r refers to obj.
func (r Ref[T]) Is(obj T) bool {
	return r.obj == obj
}

// Clone returns a second handle to r's referent, taking its own reference.
// Cloning a null handle yields a null handle.
func (r Ref[T]) Clone() Ref[T] {
	var zero T
	if r.obj != zero {
		r.obj.Acquire()
	}
	return Ref[T]{obj: r.obj}
}

// Move empties r and returns a handle that has taken over its reference.
// The count is untouched.
func (r *Ref[T]) Move() Ref[T] {
	var zero T
	obj := r.obj
	r.obj = zero
	return Ref[T]{obj: obj}
}

// Assign replaces r's referent with o's, taking the incoming reference
// before dropping the old one. Assigning a handle to itself, or between
// two handles of the same referent, is safe.
func (r *Ref[T]) Assign(o Ref[T]) {
	tmp := o.Clone()
	r.Swap(&tmp)
	tmp.Release()
}

// Swap exchanges the referents of r and o. Both counts are untouched.
func (r *Ref[T]) Swap(o *Ref[T]) {
	r.obj, o.obj = o.obj, r.obj
}

// Release drops r's reference, if any, and leaves r null. Dropping the
// last reference destroys the referent. Releasing a null handle is a
// no-op, so releasing twice is harmless.
func (r *Ref[T]) Release() {
	var zero T
	if r.obj != zero {
		obj := r.obj
		r.obj = zero
		obj.Release()
	}
}

// Detach empties r without dropping its reference and returns the raw
// referent. The reference the handle held now belongs to the caller, who
// must eventually call Release on the object directly or adopt it into
// another handle with Attach.
func (r *Ref[T]) Detach() T {
	obj := r.obj
	var zero T
	r.obj = zero
	return obj
}

// Attach wraps a reference the caller already owns, typically one obtained
// from Detach, into a handle without touching the count.
func Attach[T Counted](obj T) Ref[T] {
	return Ref[T]{obj: obj}
}

// Same reports whether two handles, possibly of different element types,
// refer to the same object. Two null handles are the same.
func Same[T, U Counted](a Ref[T], b Ref[U]) bool {
	ae, be := a.Empty(), b.Empty()
	if ae || be {
		return ae && be
	}
	return any(a.obj) == any(b.obj)
}
