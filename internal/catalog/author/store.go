// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import "context"

// Repository defines the persistence contract for authors.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error)
	FindByID(context context.Context, id string) (*Author, error)
	Create(context context.Context, author *Author) error
	Update(context context.Context, author *Author) error
	Delete(context context.Context, id string) error
}
