// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

// Predicates stored by the gateway.
const (
	PredicateTo        = "to"
	PredicateType      = "type"
	PredicateNamespace = "namespace"
	PredicateName      = "name"
)

// Triple is one fact in the graph store. Subject and Object are either node
// keys or literals, depending on the predicate.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Entity is a job or dataset as the metadata store knows it: enough to
// derive its node key and its attribute facts.
type Entity struct {
	Namespace string
	ID        string
	Name      string
}

// LinkDirection states which endpoint of a link is the edge subject.
type LinkDirection string

const (
	JobToDataset LinkDirection = "job_to_dataset"
	DatasetToJob LinkDirection = "dataset_to_job"
)

// Valid reports whether the direction is known.
func (d LinkDirection) Valid() bool {
	return d == JobToDataset || d == DatasetToJob
}

// LinkRequest relates one job and one dataset.
type LinkRequest struct {
	Job       Entity
	Dataset   Entity
	Direction LinkDirection
}

// linkEndpoint is one resolved side of a link.
type linkEndpoint struct {
	key    NodeKey
	kind   Kind
	entity Entity
}

// LinkTriples returns the seven triples a link writes, in write order: the
// edge, then type, namespace and name for subject and object alternately.
func LinkTriples(req LinkRequest) ([]Triple, error) {
	if !req.Direction.Valid() {
		return nil, invalidLink("unknown link direction %q", req.Direction)
	}
	if req.Job.Name == "" || req.Dataset.Name == "" {
		return nil, invalidLink("job and dataset names must not be empty")
	}

	jobKey, err := EncodeNodeKey(req.Job.Namespace, req.Job.ID, KindJob)
	if err != nil {
		return nil, err
	}
	datasetKey, err := EncodeNodeKey(req.Dataset.Namespace, req.Dataset.ID, KindDataset)
	if err != nil {
		return nil, err
	}

	job := linkEndpoint{key: jobKey, kind: KindJob, entity: req.Job}
	dataset := linkEndpoint{key: datasetKey, kind: KindDataset, entity: req.Dataset}

	a, b := job, dataset
	if req.Direction == DatasetToJob {
		a, b = dataset, job
	}

	return []Triple{
		{Subject: string(a.key), Predicate: PredicateTo, Object: string(b.key)},
		{Subject: string(a.key), Predicate: PredicateType, Object: string(a.kind)},
		{Subject: string(b.key), Predicate: PredicateType, Object: string(b.kind)},
		{Subject: string(a.key), Predicate: PredicateNamespace, Object: a.entity.Namespace},
		{Subject: string(b.key), Predicate: PredicateNamespace, Object: b.entity.Namespace},
		{Subject: string(a.key), Predicate: PredicateName, Object: a.entity.Name},
		{Subject: string(b.key), Predicate: PredicateName, Object: b.entity.Name},
	}, nil
}
