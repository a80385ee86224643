package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inErrors "github.com/ornamently/jewelify/internal/errors"
	inHttp "github.com/ornamently/jewelify/internal/http"
	"github.com/ornamently/jewelify/internal/log"
	productRes "github.com/ornamently/jewelify/product/pkg/response"
)

// ProductClient looks products up in the product service. The cart only ever
// uses the result as a snapshot source, never as a live reference.
type ProductClient struct {
	baseUrl string
}

func NewProductClient(baseUrl string) ProductClient {
	return ProductClient{baseUrl: baseUrl}
}

func (p ProductClient) FindProductById(
	c context.Context,
	id uuid.UUID,
) (productRes.Product, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductClient FindProductById").
		Str(log.KeyProductID, id.String()).
		Logger()

	req, err := http.NewRequestWithContext(
		c,
		http.MethodGet,
		p.baseUrl+"/"+id.String(),
		nil,
	)
	if err != nil {
		err = fmt.Errorf("failed creating product request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}
	req.Header.Add(inHttp.HeaderRequestID, log.RequestIDFromContext(c))

	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed getting productId=%s with error=%w", id.String(), err)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return productRes.Product{}, fmt.Errorf(
			"productId=%s with error=%w",
			id.String(),
			inErrors.ErrProductNotFound,
		)
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf(
			"product service returned status code=%d for productId=%s",
			resp.StatusCode,
			id.String(),
		)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}

	body := struct {
		Product productRes.Product `json:"product"`
	}{}
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		err = fmt.Errorf("failed decoding product response with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}

	return body.Product, nil
}
