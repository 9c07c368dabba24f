package gatewayhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/embervale/realm/internal/config"
)

// RealmResolver picks a live realm server address to hand out in a
// connect token (spec §4.3). Two modes are supported, selected by
// config.RealmResolverConfig.Mode.
type RealmResolver interface {
	ResolveRealm(ctx context.Context, realmID string) (addr string, err error)
}

// NewRealmResolver builds the resolver named by cfg.Mode.
func NewRealmResolver(cfg config.RealmResolverConfig) (RealmResolver, error) {
	switch cfg.Mode {
	case "local":
		return &localRealmResolver{realms: cfg.Realms}, nil
	case "kubernetes":
		return &kubernetesRealmResolver{
			namespace: cfg.Namespace,
			apiServer: cfg.APIServer,
			client:    &http.Client{Timeout: 5 * time.Second},
		}, nil
	default:
		return nil, fmt.Errorf("gatewayhttp: unknown realm resolver mode %q", cfg.Mode)
	}
}

// localRealmResolver resolves against a static list from configuration,
// the shape la2go's LoginServer used for a fixed set of game servers.
type localRealmResolver struct {
	realms []config.RealmEntry
}

func (r *localRealmResolver) ResolveRealm(_ context.Context, realmID string) (string, error) {
	for _, entry := range r.realms {
		if entry.ID == realmID {
			return entry.Address, nil
		}
	}
	if realmID == "" && len(r.realms) > 0 {
		return r.realms[0].Address, nil
	}
	return "", fmt.Errorf("gatewayhttp: no realm configured with id %q", realmID)
}

// kubernetesRealmResolver queries an Agones-like fleet CRD for ready
// GameServer addresses labeled `realm=<id>` and picks one at random,
// the way a Kubernetes-native matchmaker would front a realm fleet
// (SPEC_FULL.md supplemented feature).
type kubernetesRealmResolver struct {
	namespace string
	apiServer string
	client    *http.Client
}

type gameServerList struct {
	Items []struct {
		Status struct {
			State   string `json:"state"`
			Address string `json:"address"`
			Ports   []struct {
				Port int32 `json:"port"`
			} `json:"ports"`
		} `json:"status"`
	} `json:"items"`
}

func (r *kubernetesRealmResolver) ResolveRealm(ctx context.Context, realmID string) (string, error) {
	url := fmt.Sprintf("%s/apis/agones.dev/v1/namespaces/%s/gameservers?labelSelector=realm=%s",
		r.apiServer, r.namespace, realmID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building gameserver list request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("listing gameservers for realm %q: %w", realmID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gatewayhttp: gameserver list for realm %q returned status %d", realmID, resp.StatusCode)
	}

	var list gameServerList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("decoding gameserver list: %w", err)
	}

	var ready []string
	for _, item := range list.Items {
		if item.Status.State != "Ready" || len(item.Status.Ports) == 0 {
			continue
		}
		ready = append(ready, fmt.Sprintf("%s:%d", item.Status.Address, item.Status.Ports[0].Port))
	}
	if len(ready) == 0 {
		return "", fmt.Errorf("gatewayhttp: no ready gameserver for realm %q", realmID)
	}
	return ready[rand.IntN(len(ready))], nil
}
