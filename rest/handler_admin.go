package rest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/convoflow/convoflow/model"
)

func (s *Server) HandleSaveTenant(w http.ResponseWriter, r *http.Request) {
	var tenant model.Tenant
	if err := json.NewDecoder(r.Body).Decode(&tenant); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad tenant")
		return
	}
	defer r.Body.Close()
	if tenant.Id == "" {
		tenant.Id = uuid.New().String()
	}
	if tenant.PhoneNumberId == "" {
		respondWithError(w, http.StatusBadRequest, "tenant should have phoneNumberId")
		return
	}
	if err := s.tenants.Save(&tenant); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(w, map[string]string{"id": tenant.Id})
}

func (s *Server) HandleSaveContact(w http.ResponseWriter, r *http.Request) {
	var contact model.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad contact")
		return
	}
	defer r.Body.Close()
	if contact.TenantId == "" || contact.Phone == "" {
		respondWithError(w, http.StatusBadRequest, "contact should have tenantId and phone")
		return
	}
	if err := s.contacts.Save(&contact); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(w, map[string]string{"id": contact.Id})
}

func (s *Server) HandleSaveProduct(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad product")
		return
	}
	defer r.Body.Close()
	if product.Id == "" {
		product.Id = uuid.New().String()
	}
	if product.TenantId == "" {
		respondWithError(w, http.StatusBadRequest, "product should have tenantId")
		return
	}
	if err := s.products.Save(&product); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(w, map[string]string{"id": product.Id})
}
