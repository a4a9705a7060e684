package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

func ListActiveNodes() ([]models.RemoteNode, error) {
	var nodes []models.RemoteNode
	if err := database.C.Where("is_active = ?", true).Find(&nodes).Error; err != nil {
		return nodes, fmt.Errorf("unable to list remote nodes: %v", err)
	}
	return nodes, nil
}

// NodeForHost finds the active peer whose base URL covers the given host.
// Followers living on unconfigured nodes are skipped by the dispatcher.
func NodeForHost(host string) (models.RemoteNode, bool) {
	nodes, err := ListActiveNodes()
	if err != nil {
		return models.RemoteNode{}, false
	}

	canonical := CanonicalHost(host)
	for _, node := range nodes {
		if strings.HasPrefix(canonical, CanonicalHost(node.BaseURL)) {
			return node, true
		}
	}

	return models.RemoteNode{}, false
}

// AuthenticateNode validates an inbound federation credential against the
// RemoteNode table, falling back to the node-wide shared secret when one is
// configured.
func AuthenticateNode(username, password string) (models.RemoteNode, bool) {
	var node models.RemoteNode
	if err := database.C.
		Where("username = ? AND password = ? AND is_active = ?", username, password, true).
		First(&node).Error; err == nil {
		return node, true
	}

	fallback := viper.GetString("security.node_secret")
	if len(fallback) > 0 && username == viper.GetString("security.node_username") && password == fallback {
		return models.RemoteNode{Name: "fallback", Username: username}, true
	}

	return node, false
}

// UpsertRemoteNode provisions or refreshes a peer, keyed by base URL.
func UpsertRemoteNode(name, baseURL, username, password string, active bool) (models.RemoteNode, bool, error) {
	var node models.RemoteNode
	err := database.C.Where("base_url = ?", baseURL).First(&node).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return node, false, fmt.Errorf("unable to look up remote node: %v", err)
	}

	node.Name = name
	node.BaseURL = baseURL
	node.Username = username
	node.Password = password
	node.IsActive = active

	if err := database.C.Save(&node).Error; err != nil {
		return node, false, fmt.Errorf("unable to save remote node: %v", err)
	}

	return node, created, nil
}
