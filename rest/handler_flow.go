package rest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"go.uber.org/zap"
)

type executeFlowRequest struct {
	TenantId  string `json:"tenantId"`
	FlowId    string `json:"flowId"`
	UserPhone string `json:"userPhone"`
}

func (s *Server) HandleSaveFlow(w http.ResponseWriter, r *http.Request) {
	var def model.Flow
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad flow definition")
		return
	}
	defer r.Body.Close()
	if def.Id == "" {
		def.Id = uuid.New().String()
	}
	if err := s.flows.Save(&def); err != nil {
		logger.Error("error saving flow", zap.String("flowId", def.Id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, map[string]string{"id": def.Id})
}

func (s *Server) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	def, err := s.flows.GetDefinition(vars["tenantId"], vars["flowId"])
	if err != nil {
		if _, ok := err.(persistence.NotFoundError); ok {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(w, def)
}

func (s *Server) HandleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.flows.Delete(vars["tenantId"], vars["flowId"]); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(w, map[string]string{"message": "deleted"})
}

func (s *Server) HandleExecuteFlow(w http.ResponseWriter, r *http.Request) {
	var req executeFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad request")
		return
	}
	defer r.Body.Close()
	runId, err := s.eng.StartFlow(r.Context(), req.TenantId, req.FlowId, req.UserPhone)
	if err != nil {
		logger.Error("error running flow", zap.String("flowId", req.FlowId), zap.Error(err))
		if runId == "" {
			respondWithError(w, http.StatusBadRequest, "error running flow")
			return
		}
		// run was created; the failure is recorded on the run itself
	}
	respondOK(w, map[string]string{"runId": runId})
}

func (s *Server) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	run, err := s.runs.Get(vars["tenantId"], vars["runId"])
	if err != nil {
		if _, ok := err.(persistence.NotFoundError); ok {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(w, run)
}
