/*
Copyright 2022 The KubeVela Authors.

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

package clients

import (
	"sync"

	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

var (
	mu         sync.Mutex
	kubeClient client.Client
)

// SetKubeClient for test
func SetKubeClient(c client.Client) {
	mu.Lock()
	defer mu.Unlock()
	kubeClient = c
}

// GetKubeClient create and return kube runtime client, an empty kubeconfig path
// uses the in-cluster config or the KUBECONFIG environment.
func GetKubeClient(kubeconfig string) (client.Client, error) {
	mu.Lock()
	defer mu.Unlock()
	if kubeClient != nil {
		return kubeClient, nil
	}
	loading := clientcmd.NewDefaultClientConfigLoadingRules()
	loading.ExplicitPath = kubeconfig
	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loading, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, err
	}
	kubeClient, err = client.New(restConfig, client.Options{Scheme: scheme.Scheme})
	if err != nil {
		return nil, err
	}
	return kubeClient, nil
}
