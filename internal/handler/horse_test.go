package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
	"github.com/iliyamo/arabian-horse-auction/internal/repository"
)

// horseDir is an in-memory HorseDirectory.  SetListing follows the
// repository contract: unknown chip yields ErrHorseNotFound, a chip
// owned by someone else yields ErrForbidden.
type horseDir struct {
	horses map[string]*model.Horse
}

func newHorseDir(horses ...model.Horse) *horseDir {
	d := &horseDir{horses: make(map[string]*model.Horse)}
	for i := range horses {
		d.horses[horses[i].MicrochipID] = &horses[i]
	}
	return d
}

func (d *horseDir) Create(ctx context.Context, h *model.Horse) error {
	if _, ok := d.horses[h.MicrochipID]; ok {
		return repository.ErrConflict
	}
	d.horses[h.MicrochipID] = h
	return nil
}

func (d *horseDir) GetProfile(ctx context.Context, microchipID string) (*model.HorseProfile, error) {
	h, ok := d.horses[microchipID]
	if !ok {
		return nil, repository.ErrHorseNotFound
	}
	return &model.HorseProfile{Horse: *h}, nil
}

func (d *horseDir) ListForSale(ctx context.Context) ([]model.Horse, error) {
	var out []model.Horse
	for _, h := range d.horses {
		if h.IsForSale {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (d *horseDir) ListAll(ctx context.Context) ([]model.Horse, error) {
	var out []model.Horse
	for _, h := range d.horses {
		out = append(out, *h)
	}
	return out, nil
}

func (d *horseDir) ListByOwner(ctx context.Context, userID uint64) ([]model.Horse, error) {
	var out []model.Horse
	for _, h := range d.horses {
		if h.OwnerID != nil && *h.OwnerID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (d *horseDir) SetListing(ctx context.Context, microchipID string, userID uint64, forSale bool, price *decimal.Decimal) error {
	h, ok := d.horses[microchipID]
	if !ok {
		return repository.ErrHorseNotFound
	}
	if h.OwnerID == nil || *h.OwnerID != userID {
		return repository.ErrForbidden
	}
	h.IsForSale = forSale
	h.Price = price
	return nil
}

type ownerDir struct {
	owners map[uint64]*model.Owner
}

func (d *ownerDir) Find(ctx context.Context, userID uint64) (*model.Owner, error) {
	o, ok := d.owners[userID]
	if !ok {
		return nil, repository.ErrOwnerNotFound
	}
	return o, nil
}

func (d *ownerDir) Create(ctx context.Context, o *model.Owner) error {
	if d.owners == nil {
		d.owners = make(map[uint64]*model.Owner)
	}
	d.owners[o.OwnerID] = o
	return nil
}

func horseRequest(t *testing.T, method, target, body string, a *model.Actor) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if a != nil {
		c.Set("actor", *a)
	}
	return c, rec
}

func listedItems(t *testing.T, rec *httptest.ResponseRecorder) []model.Horse {
	t.Helper()
	var resp struct {
		Items []model.Horse `json:"items"`
	}
	check.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Items
}

func sellerID() *uint64 {
	id := uint64(7)
	return &id
}

func TestListReturnsEveryHorseByDefault(t *testing.T) {
	price := decimal.NewFromInt(50000)
	h := NewHorseHandler(newHorseDir(
		model.Horse{MicrochipID: "CHIP-1", Name: "Sahra", OwnerID: sellerID(), IsForSale: true, Price: &price},
		model.Horse{MicrochipID: "CHIP-2", Name: "Najm", OwnerID: sellerID()},
	), &ownerDir{})

	c, rec := horseRequest(t, http.MethodGet, "/v1/horses", "", nil)
	check.NoError(t, h.List(c))
	check.Equal(t, http.StatusOK, rec.Code)
	check.Equal(t, 2, len(listedItems(t, rec)))
}

func TestListForSaleFilter(t *testing.T) {
	price := decimal.NewFromInt(50000)
	h := NewHorseHandler(newHorseDir(
		model.Horse{MicrochipID: "CHIP-1", Name: "Sahra", OwnerID: sellerID(), IsForSale: true, Price: &price},
		model.Horse{MicrochipID: "CHIP-2", Name: "Najm", OwnerID: sellerID()},
	), &ownerDir{})

	c, rec := horseRequest(t, http.MethodGet, "/v1/horses?for_sale=true", "", nil)
	check.NoError(t, h.List(c))
	check.Equal(t, http.StatusOK, rec.Code)

	items := listedItems(t, rec)
	check.Equal(t, 1, len(items))
	if len(items) == 1 {
		check.Equal(t, "CHIP-1", items[0].MicrochipID)
	}
}

func TestSetListingUnknownHorseIs404(t *testing.T) {
	h := NewHorseHandler(newHorseDir(), &ownerDir{})

	c, rec := horseRequest(t, http.MethodPost, "/v1/horses/NO-SUCH/listing", `{"price":"50000"}`, &model.Actor{ID: 7, Role: model.RoleSeller})
	c.SetParamNames("microchip")
	c.SetParamValues("NO-SUCH")

	check.NoError(t, h.SetListing(c))
	check.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetListingRequiresOwnership(t *testing.T) {
	h := NewHorseHandler(newHorseDir(
		model.Horse{MicrochipID: "CHIP-1", Name: "Sahra", OwnerID: sellerID()},
	), &ownerDir{})

	c, rec := horseRequest(t, http.MethodPost, "/v1/horses/CHIP-1/listing", `{"price":"50000"}`, &model.Actor{ID: 99, Role: model.RoleSeller})
	c.SetParamNames("microchip")
	c.SetParamValues("CHIP-1")

	check.NoError(t, h.SetListing(c))
	check.Equal(t, http.StatusForbidden, rec.Code)
}
