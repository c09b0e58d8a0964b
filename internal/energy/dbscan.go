package energy

import "fmt"

// Default DBSCAN hyperparameters for the scaled feature space.
const (
	DefaultDBSCANEps    = 0.5
	DefaultDBSCANMinPts = 3
)

// DBSCANDetector clusters the scaled feature rows with DBSCAN and flags the
// noise points — rooms whose usage profile is not density-reachable from any
// cluster. Room counts are small (tens per dataset), so region queries scan
// all rows instead of going through a spatial index.
type DBSCANDetector struct {
	Eps    float64 `json:"eps"`
	MinPts int     `json:"min_pts"`

	// Labels holds the cluster assignment per row after FitPredict:
	// -1 for noise, cluster IDs counting from 0.
	Labels []int `json:"labels,omitempty"`
}

// NewDBSCANDetector returns a detector with the given density parameters.
func NewDBSCANDetector(eps float64, minPts int) *DBSCANDetector {
	return &DBSCANDetector{Eps: eps, MinPts: minPts}
}

func (c *DBSCANDetector) Name() string { return "dbscan" }

// FitPredict runs DBSCAN over the scaled rows. Cluster IDs are assigned in
// row order, so the labelling is deterministic for a given dataset.
func (c *DBSCANDetector) FitPredict(d *Dataset) ([]bool, error) {
	rows := d.Scaled
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("dbscan: empty dataset")
	}

	// 0 = unvisited, -1 = noise, >0 = cluster ID (shifted down by one on output)
	labels := make([]int, n)
	clusterID := 0

	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue
		}

		neighbors := c.regionQuery(rows, i)
		if len(neighbors) < c.MinPts {
			labels[i] = -1
			continue
		}

		clusterID++
		c.expandCluster(rows, labels, i, neighbors, clusterID)
	}

	c.Labels = make([]int, n)
	flags := make([]bool, n)
	for i, label := range labels {
		if label == -1 {
			c.Labels[i] = -1
			flags[i] = true
		} else {
			c.Labels[i] = label - 1
		}
	}
	return flags, nil
}

// expandCluster grows a cluster from a core point using a queue of
// reachable neighbours.
func (c *DBSCANDetector) expandCluster(rows [][]float64, labels []int, seedIdx int, neighbors []int, clusterID int) {
	labels[seedIdx] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == -1 {
			labels[idx] = clusterID // noise becomes a border point
		}
		if labels[idx] != 0 {
			continue
		}

		labels[idx] = clusterID
		newNeighbors := c.regionQuery(rows, idx)
		if len(newNeighbors) >= c.MinPts {
			neighbors = append(neighbors, newNeighbors...)
		}
	}
}

// regionQuery returns the indices of all rows within Eps of rows[idx],
// including idx itself. Squared distances avoid the sqrt.
func (c *DBSCANDetector) regionQuery(rows [][]float64, idx int) []int {
	eps2 := c.Eps * c.Eps
	var neighbors []int
	for i := range rows {
		if squaredDistance(rows[idx], rows[i]) <= eps2 {
			neighbors = append(neighbors, i)
		}
	}
	return neighbors
}

var _ Detector = (*DBSCANDetector)(nil)
