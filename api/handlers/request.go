package handlers

import (
	"mime"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Aidin1998/pricecatalog/pkg/errors"
	"github.com/Aidin1998/pricecatalog/pkg/jsonpatch"
	"github.com/Aidin1998/pricecatalog/pkg/validation"
)

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.InvalidInput.WithField("id", "numeric", "id must be a number")
	}
	return id, nil
}

// bindJSON decodes the body into req and validates it.
func bindJSON(c *gin.Context, v *validation.Validator, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errors.InvalidInput.Explain("malformed request body").Wrap(err)
	}
	return v.ValidateStruct(req)
}

// patchBody returns the raw JSON Patch document of a PATCH request.
func patchBody(c *gin.Context) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil || mediaType != jsonpatch.MediaType {
		return nil, errors.UnsupportedMediaType.Explain("content type must be %s", jsonpatch.MediaType)
	}
	body, err := c.GetRawData()
	if err != nil {
		return nil, errors.InvalidPatchRequest.Wrap(err)
	}
	return body, nil
}
