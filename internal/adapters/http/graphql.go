package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services. Field
// resolution relies on the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_x": &graphql.Field{Type: graphql.Float},
			"min_y": &graphql.Field{Type: graphql.Float},
			"max_x": &graphql.Field{Type: graphql.Float},
			"max_y": &graphql.Field{Type: graphql.Float},
		},
	})

	facilityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Facility",
		Fields: graphql.Fields{
			"name":           &graphql.Field{Type: graphql.String},
			"location":       &graphql.Field{Type: pointType},
			"attractiveness": &graphql.Field{Type: graphql.Float},
		},
	})

	populationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PopulationSite",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"location":   &graphql.Field{Type: pointType},
			"population": &graphql.Field{Type: graphql.Float},
		},
	})

	competitorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Competitor",
		Fields: graphql.Fields{
			"name":           &graphql.Field{Type: graphql.String},
			"location":       &graphql.Field{Type: pointType},
			"attractiveness": &graphql.Field{Type: graphql.Float},
		},
	})

	studySummaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StudySummary",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"metric":           &graphql.Field{Type: graphql.String},
			"facility_count":   &graphql.Field{Type: graphql.Int},
			"population_count": &graphql.Field{Type: graphql.Int},
			"competitor_count": &graphql.Field{Type: graphql.Int},
			"updated_at":       &graphql.Field{Type: graphql.DateTime},
		},
	})

	studyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Study",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"metric":      &graphql.Field{Type: graphql.String},
			"facilities":  &graphql.Field{Type: graphql.NewList(facilityType)},
			"populations": &graphql.Field{Type: graphql.NewList(populationType)},
			"competitors": &graphql.Field{Type: graphql.NewList(competitorType)},
			"bounds": &graphql.Field{
				Type: boundsType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, ok := p.Source.(*domain.Study)
					if !ok {
						return nil, nil
					}
					return studyBounds(s), nil
				},
			},
			"created_at": &graphql.Field{Type: graphql.DateTime},
			"updated_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	facilityDemandType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FacilityDemand",
		Fields: graphql.Fields{
			"name":   &graphql.Field{Type: graphql.String},
			"demand": &graphql.Field{Type: graphql.Float},
		},
	})

	paramsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ModelParams",
		Fields: graphql.Fields{
			"metric":        &graphql.Field{Type: graphql.String},
			"zero_distance": &graphql.Field{Type: graphql.String},
			"epsilon":       &graphql.Field{Type: graphql.Float},
			"non_negative":  &graphql.Field{Type: graphql.Boolean},
		},
	})

	estimateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DemandEstimate",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"study_id":    &graphql.Field{Type: graphql.String},
			"facilities":  &graphql.Field{Type: graphql.NewList(facilityDemandType)},
			"total":       &graphql.Field{Type: graphql.Float},
			"params":      &graphql.Field{Type: paramsType},
			"computed_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"studies": &graphql.Field{
				Type:        graphql.NewList(studySummaryType),
				Description: "List all studies",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Studies.List(p.Context)
				},
			},
			"study": &graphql.Field{
				Type:        studyType,
				Description: "Get a study with its sites",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Studies.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"latestEstimate": &graphql.Field{
				Type:        estimateType,
				Description: "Most recent stored estimate of a study",
				Args: graphql.FieldConfigArgument{
					"studyId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Demand.LatestEstimate(p.Context, p.Args["studyId"].(string))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"estimateStudy": &graphql.Field{
				Type:        estimateType,
				Description: "Compute, store and publish the demand of a study",
				Args: graphql.FieldConfigArgument{
					"studyId":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"metric":       &graphql.ArgumentConfig{Type: graphql.String},
					"zeroDistance": &graphql.ArgumentConfig{Type: graphql.String},
					"epsilon":      &graphql.ArgumentConfig{Type: graphql.Float},
					"nonNegative":  &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var params usecases.EstimateParams
					if v, ok := p.Args["metric"].(string); ok {
						params.Metric = v
					}
					if v, ok := p.Args["zeroDistance"].(string); ok {
						params.ZeroDistance = v
					}
					if v, ok := p.Args["epsilon"].(float64); ok {
						params.Epsilon = &v
					}
					if v, ok := p.Args["nonNegative"].(bool); ok {
						params.NonNegative = &v
					}
					return deps.Demand.EstimateStudy(p.Context, p.Args["studyId"].(string), params)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
