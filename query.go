package zia

import (
	"errors"
	"strconv"

	"github.com/tphakala/go-zia/internal/api"
)

// validateID checks that a resource ID is positive.
func validateID(resource string, id int) error {
	if id <= 0 {
		return &ValidationError{
			APIError: APIError{Message: resource + " ID must be positive"},
		}
	}
	return nil
}

// withResource annotates a not-found failure with what was looked up.
func withResource(err error, resource string, id int) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		nf.ResourceType = resource
		nf.ResourceID = strconv.Itoa(id)
	}
	return err
}

func addString(q api.Query, key, value string) api.Query {
	if value == "" {
		return q
	}
	return q.Add(key, value)
}

func addBool(q api.Query, key string, value *bool) api.Query {
	if value == nil {
		return q
	}
	return q.Add(key, strconv.FormatBool(*value))
}

func addInt(q api.Query, key string, value int) api.Query {
	if value <= 0 {
		return q
	}
	return q.Add(key, strconv.Itoa(value))
}

func addPage(q api.Query, page *PageOptions) api.Query {
	if page == nil {
		return q
	}
	q = addInt(q, "page", page.Page)
	return addInt(q, "pageSize", page.PageSize)
}

func (f *UserFilter) query(page *PageOptions) api.Query {
	var q api.Query
	if f != nil {
		q = addString(q, "name", f.Name)
		q = addString(q, "dept", f.Dept)
		q = addString(q, "group", f.Group)
	}
	return addPage(q, page)
}

func (f *SearchFilter) query(page *PageOptions) api.Query {
	var q api.Query
	if f != nil {
		q = addString(q, "search", f.Search)
	}
	return addPage(q, page)
}

func (f *LocationFilter) query(page *PageOptions) api.Query {
	var q api.Query
	if f != nil {
		q = addString(q, "search", f.Search)
		q = addBool(q, "sslScanEnabled", f.SSLScanEnabled)
		q = addBool(q, "xffEnabled", f.XFFEnabled)
		q = addBool(q, "authRequired", f.AuthRequired)
		q = addBool(q, "bwEnforced", f.BWEnforced)
	}
	return addPage(q, page)
}

func (f *LocationLiteFilter) query() api.Query {
	var q api.Query
	if f == nil {
		return q
	}
	q = addBool(q, "includeSubLocations", f.IncludeSubLocations)
	q = addBool(q, "includeParentLocations", f.IncludeParentLocations)
	q = addBool(q, "sslScanEnabled", f.SSLScanEnabled)
	q = addString(q, "search", f.Search)
	q = addInt(q, "page", f.Page)
	return addInt(q, "pageSize", f.PageSize)
}
