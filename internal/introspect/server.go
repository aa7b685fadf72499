package introspect

/*
   Copyright 2018 Bruno Moura <brunotm@gmail.com>

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/brunotm/melodium"
)

// Config for the introspection http Server.
type Config struct {
	Addr              string
	WriteTimeout      time.Duration
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
}

// Server exposes a running World's model table and track registry over
// http, for operational visibility; no endpoint here can mutate the World.
type Server struct {
	config Config
	world  *melodium.World
	http   *http.Server
	router *httprouter.Router
}

// New constructs a Server bound to world and registers the /graph and
// /tracks diagnostic endpoints.
func New(config Config, world *melodium.World) (server *Server) {
	server = &Server{config: config, world: world}
	server.router = httprouter.New()
	server.http = &http.Server{Addr: config.Addr}

	if config.WriteTimeout != 0 {
		server.http.WriteTimeout = config.WriteTimeout
	}
	if config.ReadTimeout != 0 {
		server.http.ReadTimeout = config.ReadTimeout
	}
	if config.ReadHeaderTimeout != 0 {
		server.http.ReadHeaderTimeout = config.ReadHeaderTimeout
	}
	server.http.Handler = server.router

	server.router.GET("/graph", server.handleGraph)
	server.router.GET("/tracks", server.handleTracks)

	return server
}

// modelSummary is the /graph response shape for one registered model.
type modelSummary struct {
	ID         uint64 `json:"id"`
	Identifier string `json:"identifier"`
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	models := s.world.Models()
	out := make([]modelSummary, 0, len(models))
	for _, m := range models {
		out = append(out, modelSummary{ID: uint64(m.ID()), Identifier: m.Descriptor().Identifier.String()})
	}
	writeJSON(w, out)
}

// trackSummary is the /tracks response shape for one model's active tracks.
type trackSummary struct {
	ModelID uint64   `json:"model_id"`
	Tracks  []uint64 `json:"tracks"`
}

func (s *Server) handleTracks(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	models := s.world.Models()
	registry := s.world.Registry()
	out := make([]trackSummary, 0, len(models))
	for _, m := range models {
		ids := registry.Active(m.ID())
		tracks := make([]uint64, 0, len(ids))
		for _, id := range ids {
			tracks = append(tracks, uint64(id))
		}
		out = append(out, trackSummary{ModelID: uint64(m.ID()), Tracks: tracks})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Start serves until Close is called.
func (s *Server) Start() (err error) {
	if err = s.http.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully.
func (s *Server) Close(ctx context.Context) (err error) {
	return s.http.Shutdown(ctx)
}
